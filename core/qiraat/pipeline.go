package qiraat

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/h9-tec/qiraat-engine/core/quran"
)

// DefaultBaseline is the lineage whose reading is flagged as default
// when no other baseline is configured.
const DefaultBaseline = "hafs"

// Options configures a pipeline run.
type Options struct {
	// Baseline is the reference lineage. Empty selects
	// DefaultBaseline.
	Baseline string

	// Workers caps concurrent verse jobs. Zero or negative selects
	// the host's processor count.
	Workers int

	// Logger receives run and per-verse diagnostics. Nil selects the
	// process default.
	Logger *slog.Logger
}

// Pipeline drives the per-verse sequence gather, align, detect,
// assemble, persist. Verses are independent of one another, so any
// number of workers may process them; results are identical regardless
// of worker count or completion order.
type Pipeline struct {
	corpus   CorpusStore
	diffs    DifferenceStore
	baseline string
	workers  int
	log      *slog.Logger
}

// NewPipeline builds a pipeline over the given stores.
func NewPipeline(corpus CorpusStore, diffs DifferenceStore, opts Options) *Pipeline {
	if opts.Baseline == "" {
		opts.Baseline = DefaultBaseline
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		corpus:   corpus,
		diffs:    diffs,
		baseline: opts.Baseline,
		workers:  opts.Workers,
		log:      opts.Logger,
	}
}

// RunSummary accounts for one pipeline run. Digest is comparable
// across runs: unchanged corpus input yields a byte-identical digest.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Baseline  string        `json:"baseline"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Verses counts jobs completed; Flagged counts verses with at
	// least one difference.
	Verses  int `json:"verses"`
	Flagged int `json:"flagged"`

	// Farsh, Usul, and WholeVerse count differences by class.
	Farsh      int `json:"farsh"`
	Usul       int `json:"usul"`
	WholeVerse int `json:"whole_verse"`

	// Digest is the blake3 run digest over per-verse digests in
	// verse order.
	Digest string `json:"digest"`
}

// Differences returns the total difference count across classes.
func (s *RunSummary) Differences() int {
	return s.Farsh + s.Usul + s.WholeVerse
}

type verseResult struct {
	done    bool
	digest  string
	flagged bool
	counts  map[Classification]int
}

// Run recomputes differences for the given verses. A store failure
// cancels the run; verses already committed stay intact because each
// verse's write is its own transaction. Cancellation is coarse: no new
// verse jobs start, in-flight ones finish.
func (p *Pipeline) Run(ctx context.Context, keys []quran.VerseKey) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Baseline:  p.baseline,
		StartedAt: time.Now().UTC(),
	}
	p.log.Info("difference run started",
		"run_id", summary.RunID,
		"verses", len(keys),
		"baseline", p.baseline,
		"workers", p.workers)

	// Results land in job order so the run digest does not depend on
	// completion order.
	results := make([]verseResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.processVerse(gctx, key)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var digests []string
	for _, res := range results {
		if !res.done {
			continue
		}
		digests = append(digests, res.digest)
		summary.Verses++
		if res.flagged {
			summary.Flagged++
		}
		summary.Farsh += res.counts[ClassFarsh]
		summary.Usul += res.counts[ClassUsul]
		summary.WholeVerse += res.counts[ClassWholeVerse]
	}
	summary.Digest = RunDigest(digests)
	summary.Duration = time.Since(summary.StartedAt)

	if err := ctx.Err(); err != nil {
		// Coarse cancellation: in-flight verses committed whole, the
		// rest never started. The partial summary is still returned.
		p.log.Warn("difference run cancelled",
			"run_id", summary.RunID, "verses", summary.Verses)
		return summary, err
	}

	p.log.Info("difference run completed",
		"run_id", summary.RunID,
		"verses", summary.Verses,
		"flagged", summary.Flagged,
		"differences", summary.Differences(),
		"digest", summary.Digest,
		"duration", summary.Duration)
	return summary, nil
}

// RunVerse recomputes a single verse and returns its differences.
func (p *Pipeline) RunVerse(ctx context.Context, key quran.VerseKey) ([]Difference, error) {
	texts, err := p.corpus.TextsForVerse(ctx, key)
	if err != nil {
		return nil, &StoreError{Op: "read corpus", Key: key, Err: err}
	}
	m := Align(key, texts)
	if m.WholeVerse {
		p.log.Debug("token counts diverged, comparing whole verse",
			"verse", key.String(), "lineages", len(m.Lineages))
	}
	diffs := Assemble(m, Detect(m), p.baseline)
	if err := p.diffs.ReplaceDifferences(ctx, key, diffs); err != nil {
		return nil, &StoreError{Op: "replace differences", Key: key, Err: err}
	}
	return diffs, nil
}

func (p *Pipeline) processVerse(ctx context.Context, key quran.VerseKey) (verseResult, error) {
	diffs, err := p.RunVerse(ctx, key)
	if err != nil {
		return verseResult{}, err
	}
	digest, err := VerseDigest(key, diffs)
	if err != nil {
		return verseResult{}, err
	}
	res := verseResult{
		done:    true,
		digest:  digest,
		flagged: len(diffs) > 0,
		counts:  make(map[Classification]int, 3),
	}
	for _, d := range diffs {
		res.counts[d.Class]++
	}
	return res, nil
}
