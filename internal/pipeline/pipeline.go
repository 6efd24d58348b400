package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"makepot/internal/catalog"
	"makepot/internal/config"
	"makepot/internal/crawler"
	"makepot/internal/extractor"
	"makepot/internal/pofile"
	"makepot/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Stats counts what a run did.
type Stats struct {
	Files    int
	Parsed   int
	Cached   int
	Failed   int
	Entries  int
	Removed  int
	Duration time.Duration
}

// Subtrahend is a subtract catalog updated with the references of the
// entries it absorbed.
type Subtrahend struct {
	Path string
	File *pofile.File
}

// Result is the outcome of a run.
type Result struct {
	Project     *Project
	Catalog     *catalog.Catalog
	Header      pofile.Header
	FileComment string
	Conflicts   []catalog.Conflict
	// Warnings aggregates per-file failures and unreadable merge or
	// subtract catalogs. They never fail the run.
	Warnings    error
	Subtrahends []Subtrahend
	Stats       Stats
}

// File returns the POT file of the result.
func (r *Result) File() *pofile.File {
	return &pofile.File{Comment: r.FileComment, Header: r.Header, Catalog: r.Catalog}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress reports per-file progress. fn is never called concurrently.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline runs one extraction: detect, discover, extract, build, reconcile.
type Pipeline struct {
	cfg      *config.Config
	progress func(done, total int)
	now      func() time.Time
}

func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline. It fails only when the source root cannot be
// walked or the run is cancelled; everything else is reported through
// Result.Warnings.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	project, err := detectProject(p.cfg.Project.Root, p.cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("type", project.Type).Str("slug", project.Slug).Str("domain", project.Domain).Msg("Detected project")

	warnings := &warningSet{}
	// A merge or subtract catalog that cannot be read is skipped; the
	// operation is a no-op for that source.
	merge := loadCatalogs(p.cfg.Output.Merge, warnings)
	subtract := loadCatalogs(p.cfg.Output.Subtract, warnings)

	files, err := p.discoverStage()
	if err != nil {
		return nil, err
	}

	ext := p.newExtractor(project.Domain)
	cache, err := p.openCacheStage()
	if err != nil {
		warnings.add(err)
		log.Warn().Err(err).Msg("Cache disabled")
	}
	if cache != nil {
		defer cache.Close()
	}

	builder := catalog.NewBuilder()
	if kind := project.kind(); kind != "" {
		builder.AddAll(extractor.HeaderRecords(kind, project.Headers, project.MainFile, project.Domain))
	}

	stats, err := p.extractStage(ctx, ext, cache, files, builder, warnings)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		paths := lo.Map(files, func(f crawler.File, _ int) string { return f.Path })
		if _, err := cache.Prune(ctx, paths); err != nil {
			warnings.add(fmt.Errorf("cache: %w", err))
		}
	}

	rec := catalog.Reconcile(builder.Catalog(), catalog.ReconcileOptions{
		Subtract:         catalogsOf(subtract),
		Merge:            catalogsOf(merge),
		SubtractAndMerge: p.cfg.Output.SubtractAndMerge,
	})

	now := p.now()
	res := &Result{
		Project:     project,
		Catalog:     rec.Catalog,
		Header:      project.potHeader(p.cfg, now),
		FileComment: project.fileComment(p.cfg, now),
		Conflicts:   builder.Conflicts(),
		Warnings:    warnings.err(),
	}
	for i, sub := range rec.Subtrahends {
		if sub == nil {
			continue
		}
		f := *subtract[i].file
		f.Catalog = sub
		res.Subtrahends = append(res.Subtrahends, Subtrahend{Path: subtract[i].path, File: &f})
	}

	stats.Entries = rec.Catalog.Len()
	stats.Removed = rec.Removed
	stats.Duration = time.Since(start)
	res.Stats = stats

	log.Info().
		Int("files", stats.Files).
		Int("parsed", stats.Parsed).
		Int("cached", stats.Cached).
		Int("failed", stats.Failed).
		Int("entries", stats.Entries).
		Dur("took", stats.Duration).
		Msg("Extraction finished")
	return res, nil
}

func (p *Pipeline) newExtractor(domain string) *extractor.Extractor {
	opts := []extractor.Option{
		extractor.WithDomain(domain),
		extractor.WithIgnoreDomain(p.cfg.Extract.IgnoreDomain),
		extractor.WithAllowSyntaxErrors(p.cfg.Extract.AllowSyntaxErrors),
	}
	if p.cfg.Extract.MaxFileSize > 0 {
		opts = append(opts, extractor.WithMaxFileSize(p.cfg.Extract.MaxFileSize))
	}
	return extractor.New(opts...)
}

func (p *Pipeline) discoverStage() ([]crawler.File, error) {
	cr := crawler.New(crawler.Options{
		Include:       p.cfg.Extract.Include,
		Exclude:       p.cfg.Extract.Exclude,
		SkipPHP:       p.cfg.Extract.SkipPHP,
		SkipJS:        p.cfg.Extract.SkipJS,
		SkipBlockJSON: p.cfg.Extract.SkipBlockJSON,
		SkipThemeJSON: p.cfg.Extract.SkipThemeJSON,
	})
	files, err := cr.Discover(p.cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover source files: %w", err)
	}
	return files, nil
}

func (p *Pipeline) openCacheStage() (storage.RecordCache, error) {
	if p.cfg.Cache.Path == "" {
		return nil, nil
	}
	store, err := storage.NewSQLiteStore(p.cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", p.cfg.Cache.Path, err)
	}
	return store, nil
}

// extractStage parses files on the crawler's worker pool and folds their
// records into builder in discovery order.
func (p *Pipeline) extractStage(ctx context.Context, ext *extractor.Extractor, cache storage.RecordCache, files []crawler.File, builder *catalog.Builder, warnings *warningSet) (Stats, error) {
	stats := Stats{Files: len(files)}
	var parsed, cached, failed atomic.Int32

	var (
		mu   sync.Mutex
		done int
	)

	batches := make(chan catalog.Batch, max(p.cfg.Extract.Workers, 1))
	consumed := make(chan struct{})
	go func() {
		builder.Consume(batches)
		close(consumed)
	}()

	cr := crawler.New(crawler.Options{Workers: p.cfg.Extract.Workers})
	err := cr.Scan(ctx, files, func(ctx context.Context, f crawler.File) error {
		records, hit, err := p.extractFile(ctx, ext, cache, f, warnings.add)
		switch {
		case err != nil:
			failed.Add(1)
			warnings.add(fmt.Errorf("%s: %w", f.Name, err))
			log.Warn().Str("file", f.Name).Err(err).Msg("Skipping file")
		case hit:
			cached.Add(1)
		default:
			parsed.Add(1)
		}

		// Failed files still send an empty batch so later files are not
		// held back.
		select {
		case batches <- catalog.Batch{Index: f.Index, File: f.Name, Records: records}:
		case <-ctx.Done():
			return ctx.Err()
		}

		if p.progress != nil {
			mu.Lock()
			done++
			p.progress(done, len(files))
			mu.Unlock()
		}
		return nil
	})
	close(batches)
	<-consumed

	stats.Parsed = int(parsed.Load())
	stats.Cached = int(cached.Load())
	stats.Failed = int(failed.Load())
	if err != nil {
		return stats, fmt.Errorf("extraction aborted: %w", err)
	}
	return stats, nil
}

// extractFile returns the records of f, from the cache when its fingerprint
// is unchanged. Cache failures are reported through warn and never fail the
// file.
func (p *Pipeline) extractFile(ctx context.Context, ext *extractor.Extractor, cache storage.RecordCache, f crawler.File, warn func(error)) ([]catalog.Record, bool, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}

	var fingerprint string
	if cache != nil {
		fingerprint = ext.Fingerprint(content, f.Language)
		records, ok, err := cache.Lookup(ctx, f.Path, fingerprint)
		if err != nil {
			warn(fmt.Errorf("cache: %w", err))
		} else if ok {
			for i := range records {
				records[i].File = f.Name
			}
			return records, true, nil
		}
	}

	records, err := ext.ExtractSource(ctx, f.Name, content, f.Language)
	if err != nil {
		return nil, false, err
	}

	if cache != nil {
		if err := cache.Save(ctx, f.Path, fingerprint, records); err != nil {
			warn(fmt.Errorf("cache: %w", err))
		}
	}
	return records, false, nil
}

// warningSet aggregates per-file failures from concurrent workers.
type warningSet struct {
	mu   sync.Mutex
	errs error
}

func (w *warningSet) add(err error) {
	w.mu.Lock()
	w.errs = multierr.Append(w.errs, err)
	w.mu.Unlock()
}

func (w *warningSet) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs
}

type loadedCatalog struct {
	path string
	file *pofile.File
}

// loadCatalogs reads POT/PO or JSON catalogs, keyed by extension. A catalog
// that cannot be read is reported to warnings and left out.
func loadCatalogs(paths []string, warnings *warningSet) []loadedCatalog {
	out := make([]loadedCatalog, 0, len(paths))
	for _, path := range paths {
		var (
			f   *pofile.File
			err error
		)
		if strings.EqualFold(filepath.Ext(path), ".json") {
			var data []byte
			data, err = os.ReadFile(path)
			if err == nil {
				f, err = pofile.ParseJSON(data)
			}
		} else {
			f, err = pofile.ParseFile(path)
		}
		if err != nil {
			warnings.add(fmt.Errorf("failed to load catalog %s: %w", path, err))
			log.Warn().Str("file", path).Err(err).Msg("Skipping catalog")
			continue
		}
		out = append(out, loadedCatalog{path: path, file: f})
	}
	return out
}

func catalogsOf(loaded []loadedCatalog) []*catalog.Catalog {
	return lo.Map(loaded, func(l loadedCatalog, _ int) *catalog.Catalog { return l.file.Catalog })
}
