package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"makepot/internal/extractor"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

func names(files []File) []string {
	return lo.Map(files, func(f File, _ int) string { return f.Name })
}

func TestDiscover(t *testing.T) {
	root := writeTree(t,
		"plugin.php",
		"inc/admin.php",
		"src/index.js",
		"src/view.tsx",
		"src/types.d.ts",
		"src/block/block.json",
		"theme.json",
		"styles/dark.json",
		"package.json",
		"build/app.min.js",
		"node_modules/lib/index.js",
		"vendor/pkg/file.php",
		"tests/bootstrap.php",
		"README.md",
	)

	files, err := New(Options{}).Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"inc/admin.php",
		"plugin.php",
		"src/block/block.json",
		"src/index.js",
		"src/view.tsx",
		"styles/dark.json",
		"theme.json",
	}, names(files))

	for i, f := range files {
		assert.Equal(t, i, f.Index)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	byName := lo.KeyBy(files, func(f File) string { return f.Name })
	assert.Equal(t, extractor.LangTSX, byName["src/view.tsx"].Language)
	assert.Equal(t, extractor.LangThemeJSON, byName["styles/dark.json"].Language)
	assert.Equal(t, extractor.LangBlockJSON, byName["src/block/block.json"].Language)
}

func TestDiscover_SkipFlags(t *testing.T) {
	root := writeTree(t, "a.php", "b.js", "c.ts", "block.json", "theme.json")

	t.Run("skip js", func(t *testing.T) {
		files, err := New(Options{SkipJS: true}).Discover(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.php", "block.json", "theme.json"}, names(files))
	})

	t.Run("skip php and manifests", func(t *testing.T) {
		files, err := New(Options{SkipPHP: true, SkipBlockJSON: true, SkipThemeJSON: true}).Discover(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.js", "c.ts"}, names(files))
	})
}

func TestDiscover_IncludeExclude(t *testing.T) {
	root := writeTree(t,
		"main.php",
		"lib/one.php",
		"lib/two.php",
		"assets/app.js",
		"vendor/acme/keep.php",
		"vendor/acme/drop.php",
	)

	t.Run("exclude directory and file", func(t *testing.T) {
		files, err := New(Options{Exclude: []string{"lib/two.php", "assets"}}).Discover(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/one.php", "main.php"}, names(files))
	})

	t.Run("include narrows", func(t *testing.T) {
		files, err := New(Options{Include: []string{"lib"}}).Discover(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/one.php", "lib/two.php"}, names(files))
	})

	t.Run("include overrides default exclude", func(t *testing.T) {
		files, err := New(Options{Include: []string{"vendor/acme/keep.php", "main.php"}}).Discover(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"main.php", "vendor/acme/keep.php"}, names(files))
	})
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := New(Options{}).Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	assert.True(t, match("node_modules", "a/node_modules/b.js"))
	assert.True(t, match("*.min.js", "dist/app.min.js"))
	assert.True(t, match("./src/", "src/x.js"))
	assert.True(t, match("src/*.js", "src/x.js"))
	assert.False(t, match("src/*.js", "lib/src/x.js"))
	assert.False(t, match("", "x.js"))
}

func TestScan(t *testing.T) {
	files := make([]File, 50)
	for i := range files {
		files[i] = File{Index: i, Name: "f"}
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]bool)
		cur  atomic.Int32
		peak atomic.Int32
	)
	err := New(Options{Workers: 3}).Scan(context.Background(), files, func(_ context.Context, f File) error {
		n := cur.Add(1)
		defer cur.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		mu.Lock()
		seen[f.Index] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 50)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestScan_StopsOnError(t *testing.T) {
	files := make([]File, 20)
	for i := range files {
		files[i] = File{Index: i}
	}
	boom := errors.New("boom")

	err := New(Options{Workers: 1}).Scan(context.Background(), files, func(_ context.Context, f File) error {
		if f.Index == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New(Options{}).Scan(ctx, []File{{Index: 0}}, func(context.Context, File) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
