// Command qiraat is the operator CLI for the comparative alignment
// and difference engine: corpus loading, difference computation,
// coverage auditing, and snapshot export.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
	"github.com/h9-tec/qiraat-engine/core/quran"
	"github.com/h9-tec/qiraat-engine/core/sqlite"
	"github.com/h9-tec/qiraat-engine/internal/config"
	"github.com/h9-tec/qiraat-engine/internal/export"
	"github.com/h9-tec/qiraat-engine/internal/ingest"
	"github.com/h9-tec/qiraat-engine/internal/logging"
	"github.com/h9-tec/qiraat-engine/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface.
var CLI struct {
	// Global flags
	Config string `help:"Path to YAML config file" type:"path"`
	DB     string `help:"Database path (overrides config)" type:"path"`

	// Command groups (noun-first organization)
	Corpus  CorpusGroup  `cmd:"" help:"Corpus operations (import, list)"`
	Diff    DiffGroup    `cmd:"" help:"Difference operations (run, show, stats)"`
	Audit   AuditGroup   `cmd:"" help:"Coverage auditing"`
	Catalog CatalogGroup `cmd:"" help:"Lineage catalog operations"`
	Export  ExportGroup  `cmd:"" help:"Export operations"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// CorpusGroup contains corpus read/write operations.
type CorpusGroup struct {
	Import CorpusImportCmd `cmd:"" help:"Import a local corpus file for one lineage"`
	List   CorpusListCmd   `cmd:"" help:"List lineages present in the corpus"`
}

// DiffGroup contains difference computation and query operations.
type DiffGroup struct {
	Run   DiffRunCmd   `cmd:"" help:"Recompute differences for a verse range"`
	Show  DiffShowCmd  `cmd:"" help:"Show stored differences for a reference"`
	Stats DiffStatsCmd `cmd:"" help:"Summarize stored differences"`
}

// AuditGroup contains coverage operations.
type AuditGroup struct {
	Run AuditRunCmd `cmd:"" help:"Audit lineage coverage"`
}

// CatalogGroup contains lineage catalog operations.
type CatalogGroup struct {
	List   CatalogListCmd   `cmd:"" help:"List catalog lineages"`
	Lookup CatalogLookupCmd `cmd:"" help:"Resolve a lineage name to its code"`
}

// ExportGroup contains export operations.
type ExportGroup struct {
	Snapshot ExportSnapshotCmd `cmd:"" help:"Write a tar.xz snapshot of coverage and differences"`
}

// appEnv is everything a command needs once configuration is loaded.
type appEnv struct {
	cfg     config.Config
	store   *store.SQLite
	catalog *qiraat.Catalog
}

func (e *appEnv) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// openEnv loads configuration, initializes logging, opens the store,
// and resolves the catalog.
func openEnv() (*appEnv, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.DB != "" {
		cfg.Database.Path = CLI.DB
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	st, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, store: st, catalog: catalog}, nil
}

// resolveKeys expands an optional reference into verse keys, all 6236
// when the reference is empty.
func resolveKeys(ref string) ([]quran.VerseKey, error) {
	if ref == "" {
		return quran.AllKeys(), nil
	}
	r, err := quran.ParseRef(ref)
	if err != nil {
		return nil, err
	}
	return r.Expand(), nil
}

// CorpusImportCmd imports a local corpus file for one lineage.
type CorpusImportCmd struct {
	Path    string `arg:"" help:"Path to corpus file" type:"existingfile"`
	Lineage string `required:"" help:"Lineage name or code the file belongs to"`
	Format  string `default:"kfgqpc" enum:"kfgqpc,tanzil" help:"Corpus file layout (kfgqpc JSON or tanzil XML)"`
}

func (c *CorpusImportCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := context.Background()

	code := env.catalog.Resolve(c.Lineage)
	if code == qiraat.CodeUnknown {
		return fmt.Errorf("lineage %q matches no catalog entry (valid codes: %v)",
			c.Lineage, env.catalog.Codes())
	}

	var count int
	switch c.Format {
	case "tanzil":
		count, err = ingest.LoadTanzil(ctx, env.store, code, c.Path)
	default:
		count, err = ingest.LoadKFGQPC(ctx, env.store, code, c.Path)
	}
	if err != nil {
		return err
	}

	if l, ok := env.catalog.ByCode(code); ok {
		if l.Source == "" {
			l.Source = c.Format
		}
		if err := env.store.PutLineage(ctx, l); err != nil {
			return err
		}
	}

	fmt.Printf("Imported %d verses for %s from %s\n", count, code, c.Path)
	return nil
}

// CorpusListCmd lists lineages present in the corpus with verse
// counts.
type CorpusListCmd struct{}

func (c *CorpusListCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := context.Background()

	codes, err := env.store.ListLineages(ctx)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		fmt.Println("corpus is empty")
		return nil
	}
	for _, code := range codes {
		keys, err := env.store.ListVerseKeys(ctx, code)
		if err != nil {
			return err
		}
		marker := ""
		if !env.catalog.Contains(code) {
			marker = "  (orphan: not in catalog)"
		}
		fmt.Printf("%-16s %d verses%s\n", code, len(keys), marker)
	}
	return nil
}

// DiffRunCmd recomputes differences for a verse range.
type DiffRunCmd struct {
	Ref      string `help:"Verse reference to recompute (e.g. 2, 2:255, 2:1-20); all verses when omitted"`
	Workers  int    `help:"Worker count (overrides config)"`
	Baseline string `help:"Baseline lineage code (overrides config)"`
}

func (c *DiffRunCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	keys, err := resolveKeys(c.Ref)
	if err != nil {
		return err
	}

	baseline := env.cfg.Catalog.Baseline
	if c.Baseline != "" {
		baseline = c.Baseline
	}
	if !env.catalog.Contains(baseline) {
		return fmt.Errorf("baseline lineage %q is not in the catalog", baseline)
	}
	workers := env.cfg.Pipeline.Workers
	if c.Workers != 0 {
		workers = c.Workers
	}

	p := qiraat.NewPipeline(env.store, env.store, qiraat.Options{
		Baseline: baseline,
		Workers:  workers,
		Logger:   logging.GetLogger(),
	})
	summary, err := p.Run(context.Background(), keys)
	if err != nil {
		logging.StoreFailure(err)
		return err
	}

	fmt.Printf("Run %s\n", summary.RunID)
	fmt.Printf("  Verses:      %d (%d flagged)\n", summary.Verses, summary.Flagged)
	fmt.Printf("  Differences: %d (farsh %d, usul %d, whole-verse %d)\n",
		summary.Differences(), summary.Farsh, summary.Usul, summary.WholeVerse)
	fmt.Printf("  Digest:      %s\n", summary.Digest)
	fmt.Printf("  Duration:    %s\n", summary.Duration)
	return nil
}

// DiffShowCmd prints stored differences for a reference as JSON.
type DiffShowCmd struct {
	Ref string `arg:"" help:"Verse reference (e.g. 2:255, 2:1-20)"`
}

func (c *DiffShowCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := context.Background()

	keys, err := resolveKeys(c.Ref)
	if err != nil {
		return err
	}
	var diffs []qiraat.Difference
	for _, key := range keys {
		rows, err := env.store.GetDifferences(ctx, key)
		if err != nil {
			return err
		}
		diffs = append(diffs, rows...)
	}
	return export.WriteDifferencesJSON(os.Stdout, diffs)
}

// DiffStatsCmd summarizes stored differences.
type DiffStatsCmd struct {
	Surah int `help:"Limit to one surah (0 means corpus-wide)"`
}

func (c *DiffStatsCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	stats, err := env.store.Stats(context.Background(), c.Surah)
	if err != nil {
		return err
	}
	fmt.Printf("Differences: %d across %d verses\n", stats.Total, stats.Verses)
	for _, class := range []qiraat.Classification{qiraat.ClassFarsh, qiraat.ClassUsul, qiraat.ClassWholeVerse} {
		fmt.Printf("  %-12s %d\n", string(class), stats.ByClass[class])
	}
	return nil
}

// AuditRunCmd audits lineage coverage and prints the report as JSON.
type AuditRunCmd struct {
	Lineage string `help:"Audit a single lineage code; all lineages when omitted"`
}

func (c *AuditRunCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := context.Background()

	auditor := qiraat.NewAuditor(env.store, env.catalog, env.cfg.Coverage.Band)
	var report *qiraat.CoverageReport
	if c.Lineage != "" {
		cov, err := auditor.Audit(ctx, c.Lineage)
		if err != nil {
			return err
		}
		logging.CoverageIssue(cov)
		report = &qiraat.CoverageReport{
			GeneratedAt: time.Now().UTC(),
			Expected:    cov.Expected,
			Band:        env.cfg.Coverage.Band,
			Lineages:    []qiraat.LineageCoverage{*cov},
			Average:     cov.Percent,
		}
	} else {
		report, err = auditor.AuditAll(ctx)
		if err != nil {
			return err
		}
		for i := range report.Lineages {
			logging.CoverageIssue(&report.Lineages[i])
		}
	}
	return export.WriteCoverageJSON(os.Stdout, report)
}

// CatalogListCmd lists the catalog lineages.
type CatalogListCmd struct{}

func (c *CatalogListCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	for _, l := range env.catalog.Lineages() {
		fmt.Printf("%-14s %-28s %s\n", l.Code, l.EnglishName, l.ArabicName)
	}
	return nil
}

// CatalogLookupCmd resolves a human-entered name to a catalog code.
type CatalogLookupCmd struct {
	Name string `arg:"" help:"Lineage name in either script, or a code"`
}

func (c *CatalogLookupCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	code := env.catalog.Resolve(c.Name)
	fmt.Println(code)
	if code == qiraat.CodeUnknown {
		return fmt.Errorf("%q matches no catalog entry", c.Name)
	}
	return nil
}

// ExportSnapshotCmd writes a tar.xz snapshot of the audit report and
// all stored differences.
type ExportSnapshotCmd struct {
	Out string `required:"" help:"Output archive path (.tar.xz)" type:"path"`
}

func (c *ExportSnapshotCmd) Run() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := context.Background()

	auditor := qiraat.NewAuditor(env.store, env.catalog, env.cfg.Coverage.Band)
	report, err := auditor.AuditAll(ctx)
	if err != nil {
		return err
	}
	diffs, err := env.store.ListDifferences(ctx, store.DiffFilter{})
	if err != nil {
		return err
	}

	snap := export.Snapshot{RunID: uuid.NewString(), Coverage: report, Differences: diffs}
	if err := export.WriteSnapshot(c.Out, snap); err != nil {
		return err
	}
	fmt.Printf("Created: %s (%d lineages, %d differences)\n", c.Out, len(report.Lineages), len(diffs))
	return nil
}

// VersionCmd prints version and driver information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Printf("qiraat %s\n", version)
	fmt.Printf("  sqlite driver: %s (%s)\n", info.DriverName, info.Package)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("qiraat"),
		kong.Description("Comparative alignment and difference engine for qiraat transcriptions."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
