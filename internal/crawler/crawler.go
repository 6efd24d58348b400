package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"makepot/internal/extractor"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DefaultExclude is applied on top of user excludes. An explicit include
// match overrides it.
var DefaultExclude = []string{
	".git", ".svn", ".hg", "node_modules", "vendor",
	"*.min.js", "Gruntfile.js", "webpack.config.js",
	"test", "tests",
}

// Options selects which files a crawl yields.
type Options struct {
	Include []string
	Exclude []string

	SkipPHP       bool
	SkipJS        bool
	SkipBlockJSON bool
	SkipThemeJSON bool

	// Workers bounds Scan concurrency. Zero means GOMAXPROCS.
	Workers int
}

// File is one discovered source file.
type File struct {
	// Index is the file's position in discovery order.
	Index int
	// Path is the absolute path on disk.
	Path string
	// Name is the slash-separated path relative to the crawl root, used in
	// references.
	Name     string
	Language extractor.Language
}

// Crawler discovers translatable source files.
type Crawler struct {
	opts Options
}

// New creates a crawler.
func New(opts Options) *Crawler {
	return &Crawler{opts: opts}
}

// Discover walks root and returns the files to extract, in lexical order.
func (c *Crawler) Discover(root string) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if c.excluded(rel) && !c.includesBelow(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.excluded(rel) {
			return nil
		}
		if len(c.opts.Include) > 0 && !matchAny(c.opts.Include, rel) {
			return nil
		}

		lang, ok := extractor.DetectLanguage(rel)
		if !ok || c.skipped(lang) {
			return nil
		}
		files = append(files, File{Index: len(files), Path: p, Name: rel, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	log.Debug().Str("root", root).Int("files", len(files)).Msg("Discovered source files")
	return files, nil
}

// Scan calls fn for every file on a bounded worker pool. The first error
// returned by fn cancels the remaining work. Cancelling parent stops the
// scan with parent's error.
func (c *Crawler) Scan(parent context.Context, files []File, fn func(context.Context, File) error) error {
	workers := c.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workers)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}

func (c *Crawler) skipped(lang extractor.Language) bool {
	switch {
	case lang == extractor.LangPHP:
		return c.opts.SkipPHP
	case lang.IsScript():
		return c.opts.SkipJS
	case lang == extractor.LangBlockJSON:
		return c.opts.SkipBlockJSON
	case lang == extractor.LangThemeJSON:
		return c.opts.SkipThemeJSON
	}
	return true
}

// excluded reports whether rel matches a user exclude, or a default exclude
// that no include overrides.
func (c *Crawler) excluded(rel string) bool {
	if matchAny(c.opts.Exclude, rel) {
		return true
	}
	return matchAny(DefaultExclude, rel) && !matchAny(c.opts.Include, rel)
}

// includesBelow reports whether an include pattern names something inside
// the directory rel, so that the walk must descend into it.
func (c *Crawler) includesBelow(dir string) bool {
	return lo.SomeBy(c.opts.Include, func(p string) bool {
		return strings.HasPrefix(normalize(p), dir+"/")
	})
}

func matchAny(patterns []string, rel string) bool {
	return lo.SomeBy(patterns, func(p string) bool { return match(p, rel) })
}

// match tests a pattern against a slash-separated relative path. A pattern
// with a slash is anchored at the root and also matches everything below
// the path it names. A pattern without one matches any path segment.
func match(pattern, rel string) bool {
	pattern = normalize(pattern)
	if pattern == "" {
		return false
	}
	if strings.Contains(pattern, "/") {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		return strings.HasPrefix(rel, pattern+"/")
	}
	return lo.SomeBy(strings.Split(rel, "/"), func(seg string) bool {
		ok, _ := path.Match(pattern, seg)
		return ok
	})
}

func normalize(pattern string) string {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	pattern = strings.TrimPrefix(pattern, "./")
	return strings.Trim(pattern, "/")
}
