package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
)

// DiffFilter narrows read-side difference queries. Zero values mean
// "no constraint".
type DiffFilter struct {
	// Surah limits results to one surah.
	Surah int

	// Class limits results to one classification.
	Class qiraat.Classification

	// Lineage limits results to differences whose readings mention
	// the lineage code.
	Lineage string
}

func (f DiffFilter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.Surah != 0 {
		q = q.Where(sq.Eq{"surah": f.Surah})
	}
	if f.Class != "" {
		q = q.Where(sq.Eq{"class": string(f.Class)})
	}
	if f.Lineage != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM readings r
			WHERE r.difference_id = differences.id AND r.lineages LIKE ?)`,
			`%"`+f.Lineage+`"%`)
	}
	return q
}

// ListDifferences returns the differences matching the filter, with
// readings, in canonical verse order.
func (s *SQLite) ListDifferences(ctx context.Context, f DiffFilter) ([]qiraat.Difference, error) {
	query, args, err := f.apply(
		sq.Select("id", "surah", "verse", "position", "word", "class", "note").
			From("differences").
			OrderBy("surah", "verse", "position", "id"),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build difference query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list differences: %w", err)
	}
	defer rows.Close()

	var diffs []qiraat.Difference
	var ids []int64
	for rows.Next() {
		var (
			id    int64
			d     qiraat.Difference
			class string
		)
		if err := rows.Scan(&id, &d.Key.Surah, &d.Key.Verse,
			&d.Position, &d.Word, &class, &d.Note); err != nil {
			return nil, err
		}
		d.Class = qiraat.Classification(class)
		diffs = append(diffs, d)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		readings, err := s.readingsFor(ctx, id)
		if err != nil {
			return nil, err
		}
		diffs[i].Readings = readings
	}
	return diffs, nil
}

// DiffStats aggregates stored differences.
type DiffStats struct {
	Total   int                           `json:"total"`
	ByClass map[qiraat.Classification]int `json:"by_class"`
	Verses  int                           `json:"verses"`
}

// Stats counts differences by classification, optionally limited to
// one surah (0 means corpus-wide).
func (s *SQLite) Stats(ctx context.Context, surah int) (*DiffStats, error) {
	base := sq.Select("class", "COUNT(*)").From("differences").GroupBy("class")
	if surah != 0 {
		base = base.Where(sq.Eq{"surah": surah})
	}
	query, args, err := base.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := &DiffStats{ByClass: make(map[qiraat.Classification]int)}
	for rows.Next() {
		var (
			class string
			count int
		)
		if err := rows.Scan(&class, &count); err != nil {
			return nil, err
		}
		stats.ByClass[qiraat.Classification(class)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	verseQ := sq.Select("COUNT(DISTINCT surah || ':' || verse)").From("differences")
	if surah != 0 {
		verseQ = verseQ.Where(sq.Eq{"surah": surah})
	}
	query, args, err = verseQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build verse-count query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&stats.Verses); err != nil {
		return nil, fmt.Errorf("count flagged verses: %w", err)
	}
	return stats, nil
}

// DifferenceKeys returns the distinct verse keys that hold at least
// one difference, in canonical order.
func (s *SQLite) DifferenceKeys(ctx context.Context) ([]quran.VerseKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT surah, verse FROM differences ORDER BY surah, verse`)
	if err != nil {
		return nil, fmt.Errorf("list difference keys: %w", err)
	}
	defer rows.Close()

	var out []quran.VerseKey
	for rows.Next() {
		var k quran.VerseKey
		if err := rows.Scan(&k.Surah, &k.Verse); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
