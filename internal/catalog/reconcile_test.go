package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(entries ...*Entry) *Catalog {
	c := New()
	for _, e := range entries {
		c.Put(e)
	}
	return c
}

func TestSubtract(t *testing.T) {
	fresh := catalogOf(
		&Entry{MsgID: "Hi", References: []Reference{{"a.php", 1}}},
		&Entry{MsgID: "Bye", References: []Reference{{"a.php", 2}}},
		&Entry{MsgID: "Hi", Context: "formal"},
	)
	sub := catalogOf(&Entry{MsgID: "Hi", References: []Reference{{"other.php", 99}}, TranslatorComment: "x"})

	out := Subtract(fresh, sub)
	assert.False(t, out.Has(Key{MsgID: "Hi"}))
	assert.True(t, out.Has(Key{MsgID: "Bye"}))
	assert.True(t, out.Has(Key{Context: "formal", MsgID: "Hi"}))

	// input untouched
	assert.True(t, fresh.Has(Key{MsgID: "Hi"}))
}

func TestSubtract_NilAndEmptyAreNoOps(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi"})
	out := Subtract(fresh, nil, New())
	assert.Equal(t, 1, out.Len())
}

func TestMerge_PreservesExistingMetadata(t *testing.T) {
	fresh := catalogOf(&Entry{
		MsgID:       "%d item",
		MsgIDPlural: "%d items",
		References:  []Reference{{"a.php", 1}},
	})
	existing := catalogOf(
		&Entry{
			MsgID:             "%d item",
			TranslatorComment: "Item count",
			References:        []Reference{{"old.php", 4}, {"a.php", 1}},
			Translations:      []string{"%d Ding", "%d Dinge"},
			Flags:             []string{"php-format"},
		},
		&Entry{MsgID: "Legacy"},
	)

	out := Merge(fresh, existing)
	require.Equal(t, 2, out.Len())

	e, ok := out.Get(Key{MsgID: "%d item"})
	require.True(t, ok)
	assert.Equal(t, "Item count", e.TranslatorComment)
	assert.Equal(t, "%d items", e.MsgIDPlural)
	assert.Equal(t, []Reference{{"a.php", 1}, {"old.php", 4}}, e.References)
	assert.Equal(t, []string{"%d Ding", "%d Dinge"}, e.Translations)
	assert.Equal(t, []string{"php-format"}, e.Flags)

	assert.Equal(t, "Legacy", out.All()[1].MsgID)
}

func TestMerge_FreshCommentKeptWhenExistingEmpty(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi", TranslatorComment: "Greeting"})
	existing := catalogOf(&Entry{MsgID: "Hi"})

	e, _ := Merge(fresh, existing).Get(Key{MsgID: "Hi"})
	assert.Equal(t, "Greeting", e.TranslatorComment)
}

func TestMerge_AppliesSourcesInOrder(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi"})
	first := catalogOf(&Entry{MsgID: "Hi", TranslatorComment: "first"})
	second := catalogOf(&Entry{MsgID: "Hi", TranslatorComment: "second"})

	e, _ := Merge(fresh, first, second).Get(Key{MsgID: "Hi"})
	assert.Equal(t, "second", e.TranslatorComment)
}

func TestReconcile_SubtractBeforeMerge(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi"}, &Entry{MsgID: "Bye"})
	res := Reconcile(fresh, ReconcileOptions{
		Subtract: []*Catalog{catalogOf(&Entry{MsgID: "Hi"})},
		Merge:    []*Catalog{catalogOf(&Entry{MsgID: "Hi", TranslatorComment: "kept"})},
	})

	// Plain merge is a union, so the merge set brings the key back.
	assert.True(t, res.Catalog.Has(Key{MsgID: "Hi"}))
	assert.Equal(t, 1, res.Removed)
	assert.Nil(t, res.Subtrahends)
}

func TestReconcile_SubtractAndMerge(t *testing.T) {
	fresh := catalogOf(
		&Entry{MsgID: "Hi", References: []Reference{{"a.js", 2}}},
		&Entry{MsgID: "Bye", References: []Reference{{"a.js", 3}}},
	)
	sub := catalogOf(&Entry{MsgID: "Hi", References: []Reference{{"a.php", 1}}})
	mergeSet := catalogOf(
		&Entry{MsgID: "Bye", TranslatorComment: "Farewell"},
		&Entry{MsgID: "Unrelated"},
	)

	res := Reconcile(fresh, ReconcileOptions{
		Subtract:         []*Catalog{sub},
		Merge:            []*Catalog{mergeSet},
		SubtractAndMerge: true,
	})

	require.Equal(t, 1, res.Catalog.Len())
	e, ok := res.Catalog.Get(Key{MsgID: "Bye"})
	require.True(t, ok)
	assert.Equal(t, "Farewell", e.TranslatorComment)

	require.Len(t, res.Subtrahends, 1)
	hi, _ := res.Subtrahends[0].Get(Key{MsgID: "Hi"})
	assert.Equal(t, []Reference{{"a.php", 1}, {"a.js", 2}}, hi.References)

	// The caller's subtrahend is not modified.
	orig, _ := sub.Get(Key{MsgID: "Hi"})
	assert.Len(t, orig.References, 1)
}

func TestReconcile_SubtractAndMergeDefaultsToSubtrahends(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi"})
	res := Reconcile(fresh, ReconcileOptions{
		Subtract:         []*Catalog{catalogOf(&Entry{MsgID: "Other", TranslatorComment: "c"})},
		SubtractAndMerge: true,
	})
	assert.Equal(t, 1, res.Catalog.Len())
	assert.False(t, res.Catalog.Has(Key{MsgID: "Other"}))
}

func TestReconcile_NoOptionsReturnsCopy(t *testing.T) {
	fresh := catalogOf(&Entry{MsgID: "Hi"})
	res := Reconcile(fresh, ReconcileOptions{})
	require.Equal(t, 1, res.Catalog.Len())

	e, _ := res.Catalog.Get(Key{MsgID: "Hi"})
	e.TranslatorComment = "changed"
	orig, _ := fresh.Get(Key{MsgID: "Hi"})
	assert.Equal(t, "", orig.TranslatorComment)
}
