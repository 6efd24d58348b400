package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"makepot/internal/catalog"

	"github.com/rs/zerolog/log"
)

// DefaultMaxFileSize is the largest source file that is parsed.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrSyntax              = errors.New("syntax error")
	ErrFileTooLarge        = errors.New("file too large")
)

// Options configures an Extractor.
type Options struct {
	// Domain is the text domain calls must declare. Empty disables
	// filtering, as does IgnoreDomain.
	Domain       string
	IgnoreDomain bool
	// AllowSyntaxErrors extracts from error-tolerant trees instead of
	// rejecting the file.
	AllowSyntaxErrors bool
	MaxFileSize       int
	MaxEvalDepth      int
	Table             *Table
}

// Option mutates Options.
type Option func(*Options)

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

func WithIgnoreDomain(ignore bool) Option {
	return func(o *Options) { o.IgnoreDomain = ignore }
}

func WithAllowSyntaxErrors(allow bool) Option {
	return func(o *Options) { o.AllowSyntaxErrors = allow }
}

func WithMaxFileSize(size int) Option {
	return func(o *Options) { o.MaxFileSize = size }
}

func WithMaxEvalDepth(depth int) Option {
	return func(o *Options) { o.MaxEvalDepth = depth }
}

// WithTable replaces the default signature table.
func WithTable(t *Table) Option {
	return func(o *Options) { o.Table = t }
}

// Extractor turns source files into extraction records. It holds no
// per-file state and is safe for concurrent use.
type Extractor struct {
	opts     Options
	resolver *resolver
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	o := Options{
		MaxFileSize:  DefaultMaxFileSize,
		MaxEvalDepth: DefaultMaxEvalDepth,
		Table:        DefaultTable(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor{
		opts: o,
		resolver: &resolver{
			table:        o.Table,
			maxEvalDepth: o.MaxEvalDepth,
			allowErrors:  o.AllowSyntaxErrors,
		},
	}
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// FilterDomain reports whether records are filtered by domain.
func (e *Extractor) FilterDomain() bool {
	return !e.opts.IgnoreDomain && e.opts.Domain != ""
}

// ExtractFromFile reads and extracts a single file. name is the path the
// records refer to.
func (e *Extractor) ExtractFromFile(ctx context.Context, path, name string) ([]catalog.Record, error) {
	lang, ok := DetectLanguage(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.ExtractSource(ctx, name, content, lang)
}

// ExtractSource extracts the translation records of one file's content.
// Records come out in document order.
func (e *Extractor) ExtractSource(ctx context.Context, name string, content []byte, lang Language) ([]catalog.Record, error) {
	if e.opts.MaxFileSize > 0 && len(content) > e.opts.MaxFileSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", name, ErrFileTooLarge, len(content))
	}
	if lang.IsManifest() {
		return e.ExtractManifest(name, content, lang)
	}
	d, ok := dialectFor(lang)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", name, ErrUnsupportedLanguage, lang)
	}

	tree, err := parseSource(ctx, d, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !e.opts.AllowSyntaxErrors {
		return nil, fmt.Errorf("%s: %w", name, ErrSyntax)
	}

	var records []catalog.Record
	unit := e.resolver.newUnit(d, content, root)
	e.resolver.resolve(ctx, unit, func(m CallMatch) {
		rec, ok := extractArguments(m, name)
		if !ok {
			log.Debug().Str("file", name).Int("line", m.Line).Str("function", m.Function).Msg("Skipping call with non-literal arguments")
			return
		}
		if rec.MsgID == "" {
			return
		}
		if e.FilterDomain() && rec.Domain != e.opts.Domain {
			return
		}
		rec.Comment = translatorComment(m.unit.d, m.Node, m.unit.src)
		records = append(records, rec)
	})
	return records, nil
}
