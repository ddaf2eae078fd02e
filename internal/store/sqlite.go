// Package store persists the corpus and the engine's difference
// records. The SQLite implementation is the production store; Memory
// backs tests and embedding without a database file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/h9-tec/qiraat-engine/core/arabic"
	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
	"github.com/h9-tec/qiraat-engine/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lineages (
	code    TEXT PRIMARY KEY,
	name_ar TEXT NOT NULL DEFAULT '',
	name_en TEXT NOT NULL DEFAULT '',
	rawi_ar TEXT NOT NULL DEFAULT '',
	rawi_en TEXT NOT NULL DEFAULT '',
	qari_ar TEXT NOT NULL DEFAULT '',
	qari_en TEXT NOT NULL DEFAULT '',
	source  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS verse_texts (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	lineage TEXT    NOT NULL,
	surah   INTEGER NOT NULL,
	verse   INTEGER NOT NULL,
	text    TEXT    NOT NULL,
	simple  TEXT    NOT NULL DEFAULT '',
	norm    TEXT    NOT NULL,
	juz     INTEGER NOT NULL DEFAULT 0,
	page    INTEGER NOT NULL DEFAULT 0,
	UNIQUE (lineage, surah, verse)
);
CREATE INDEX IF NOT EXISTS idx_verse_texts_key ON verse_texts (surah, verse);

CREATE TABLE IF NOT EXISTS differences (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	surah    INTEGER NOT NULL,
	verse    INTEGER NOT NULL,
	position INTEGER NOT NULL,
	word     TEXT    NOT NULL DEFAULT '',
	class    TEXT    NOT NULL,
	note     TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_differences_key ON differences (surah, verse, position);

CREATE TABLE IF NOT EXISTS readings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	difference_id INTEGER NOT NULL REFERENCES differences(id) ON DELETE CASCADE,
	text          TEXT    NOT NULL,
	norm          TEXT    NOT NULL,
	lineages      TEXT    NOT NULL,
	is_baseline   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_readings_diff ON readings (difference_id);
`

// SQLite backs both engine store interfaces with one database file.
type SQLite struct {
	db *sql.DB
}

var (
	_ qiraat.CorpusStore     = (*SQLite)(nil)
	_ qiraat.DifferenceStore = (*SQLite)(nil)
)

// OpenSQLite opens (creating if needed) the store at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sqlite.OpenAt(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// PutLineage upserts one catalog entry.
func (s *SQLite) PutLineage(ctx context.Context, l qiraat.Lineage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lineages (code, name_ar, name_en, rawi_ar, rawi_en, qari_ar, qari_en, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			name_ar = excluded.name_ar, name_en = excluded.name_en,
			rawi_ar = excluded.rawi_ar, rawi_en = excluded.rawi_en,
			qari_ar = excluded.qari_ar, qari_en = excluded.qari_en,
			source  = excluded.source`,
		l.Code, l.ArabicName, l.EnglishName, l.RawiArabic, l.RawiEnglish,
		l.QariArabic, l.QariEnglish, l.Source)
	if err != nil {
		return fmt.Errorf("put lineage %s: %w", l.Code, err)
	}
	return nil
}

// Lineages returns the persisted catalog rows sorted by code.
func (s *SQLite) Lineages(ctx context.Context) ([]qiraat.Lineage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name_ar, name_en, rawi_ar, rawi_en, qari_ar, qari_en, source
		FROM lineages ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list lineages: %w", err)
	}
	defer rows.Close()

	var out []qiraat.Lineage
	for rows.Next() {
		var l qiraat.Lineage
		if err := rows.Scan(&l.Code, &l.ArabicName, &l.EnglishName,
			&l.RawiArabic, &l.RawiEnglish, &l.QariArabic, &l.QariEnglish, &l.Source); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// PutText upserts one transcription, caching its normalized form.
func (s *SQLite) PutText(ctx context.Context, vt qiraat.VerseText) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verse_texts (lineage, surah, verse, text, simple, norm, juz, page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lineage, surah, verse) DO UPDATE SET
			text = excluded.text, simple = excluded.simple, norm = excluded.norm,
			juz = excluded.juz, page = excluded.page`,
		vt.Lineage, vt.Key.Surah, vt.Key.Verse, vt.Text, vt.Simple,
		arabic.Normalize(vt.Text), vt.Juz, vt.Page)
	if err != nil {
		return fmt.Errorf("put text %s %s: %w", vt.Lineage, vt.Key, err)
	}
	return nil
}

// GetText returns one lineage's transcription of a verse.
func (s *SQLite) GetText(ctx context.Context, lineage string, key quran.VerseKey) (qiraat.VerseText, bool, error) {
	vt := qiraat.VerseText{Lineage: lineage, Key: key}
	err := s.db.QueryRowContext(ctx, `
		SELECT text, simple, juz, page FROM verse_texts
		WHERE lineage = ? AND surah = ? AND verse = ?`,
		lineage, key.Surah, key.Verse).
		Scan(&vt.Text, &vt.Simple, &vt.Juz, &vt.Page)
	if err == sql.ErrNoRows {
		return qiraat.VerseText{}, false, nil
	}
	if err != nil {
		return qiraat.VerseText{}, false, fmt.Errorf("get text %s %s: %w", lineage, key, err)
	}
	return vt, true, nil
}

// TextsForVerse returns every transcription of a verse keyed by
// lineage code.
func (s *SQLite) TextsForVerse(ctx context.Context, key quran.VerseKey) (map[string]qiraat.VerseText, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lineage, text, simple, juz, page FROM verse_texts
		WHERE surah = ? AND verse = ?`, key.Surah, key.Verse)
	if err != nil {
		return nil, fmt.Errorf("texts for %s: %w", key, err)
	}
	defer rows.Close()

	out := make(map[string]qiraat.VerseText)
	for rows.Next() {
		vt := qiraat.VerseText{Key: key}
		if err := rows.Scan(&vt.Lineage, &vt.Text, &vt.Simple, &vt.Juz, &vt.Page); err != nil {
			return nil, err
		}
		out[vt.Lineage] = vt
	}
	return out, rows.Err()
}

// ListLineages returns the lineage codes present in the corpus.
func (s *SQLite) ListLineages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT lineage FROM verse_texts ORDER BY lineage`)
	if err != nil {
		return nil, fmt.Errorf("list corpus lineages: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

// ListVerseKeys returns the verses a lineage holds in canonical order.
func (s *SQLite) ListVerseKeys(ctx context.Context, lineage string) ([]quran.VerseKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT surah, verse FROM verse_texts
		WHERE lineage = ? ORDER BY surah, verse`, lineage)
	if err != nil {
		return nil, fmt.Errorf("list verse keys %s: %w", lineage, err)
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

// PutDifference appends one difference with its readings in a
// transaction of its own.
func (s *SQLite) PutDifference(ctx context.Context, d qiraat.Difference) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertDifference(ctx, tx, d); err != nil {
		return err
	}
	return tx.Commit()
}

// GetDifferences returns a verse's differences in position order,
// readings in stored order.
func (s *SQLite) GetDifferences(ctx context.Context, key quran.VerseKey) ([]qiraat.Difference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, word, class, note FROM differences
		WHERE surah = ? AND verse = ? ORDER BY position, id`,
		key.Surah, key.Verse)
	if err != nil {
		return nil, fmt.Errorf("get differences %s: %w", key, err)
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
		d.Key = key
		if err := rows.Scan(&id, &d.Position, &d.Word, &class, &d.Note); err != nil {
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

func (s *SQLite) readingsFor(ctx context.Context, differenceID int64) ([]qiraat.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT text, norm, lineages, is_baseline FROM readings
		WHERE difference_id = ? ORDER BY id`, differenceID)
	if err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}
	defer rows.Close()

	var out []qiraat.Reading
	for rows.Next() {
		var (
			r        qiraat.Reading
			members  string
			baseline int
		)
		if err := rows.Scan(&r.Text, &r.Norm, &members, &baseline); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &r.Lineages); err != nil {
			return nil, fmt.Errorf("decode reading lineages: %w", err)
		}
		r.Baseline = baseline != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteDifferences removes a verse's differences; readings go with
// them through the foreign-key cascade.
func (s *SQLite) DeleteDifferences(ctx context.Context, key quran.VerseKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM differences WHERE surah = ? AND verse = ?`,
		key.Surah, key.Verse)
	if err != nil {
		return fmt.Errorf("delete differences %s: %w", key, err)
	}
	return nil
}

// ReplaceDifferences deletes and reinserts one verse's rows in a
// single transaction, so a concurrent reader sees the verse either
// fully old or fully new.
func (s *SQLite) ReplaceDifferences(ctx context.Context, key quran.VerseKey, diffs []qiraat.Difference) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM differences WHERE surah = ? AND verse = ?`,
		key.Surah, key.Verse); err != nil {
		return fmt.Errorf("delete differences %s: %w", key, err)
	}
	for _, d := range diffs {
		if err := insertDifference(ctx, tx, d); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertDifference(ctx context.Context, tx *sql.Tx, d qiraat.Difference) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO differences (surah, verse, position, word, class, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.Key.Surah, d.Key.Verse, d.Position, d.Word, string(d.Class), d.Note)
	if err != nil {
		return fmt.Errorf("insert difference %s: %w", d.Key, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("difference id: %w", err)
	}
	for _, r := range d.Readings {
		members, err := json.Marshal(r.Lineages)
		if err != nil {
			return fmt.Errorf("encode reading lineages: %w", err)
		}
		baseline := 0
		if r.Baseline {
			baseline = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO readings (difference_id, text, norm, lineages, is_baseline)
			VALUES (?, ?, ?, ?, ?)`,
			id, r.Text, r.Norm, string(members), baseline); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	return nil
}
