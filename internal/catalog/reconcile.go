package catalog

import "slices"

// ReconcileOptions selects the reconciliation steps for a run.
type ReconcileOptions struct {
	// Subtract catalogs are removed from the fresh catalog by key.
	Subtract []*Catalog
	// Merge catalogs are folded into what survives subtraction.
	Merge []*Catalog
	// SubtractAndMerge merges the remainder against Merge, or against
	// Subtract when Merge is empty, and returns updated subtrahends.
	SubtractAndMerge bool
}

// ReconcileResult is the outcome of Reconcile.
type ReconcileResult struct {
	Catalog *Catalog
	// Subtrahends holds, for SubtractAndMerge runs, one updated copy per
	// subtract catalog carrying the references of the entries it absorbed.
	Subtrahends []*Catalog
	Removed     int
}

// Reconcile applies subtract, then merge, to a copy of fresh. Sources are
// applied in the order given. Inputs are never modified.
func Reconcile(fresh *Catalog, opts ReconcileOptions) ReconcileResult {
	cur := fresh.Clone()
	res := ReconcileResult{}

	if opts.SubtractAndMerge {
		for _, sub := range opts.Subtract {
			if sub == nil {
				res.Subtrahends = append(res.Subtrahends, nil)
				continue
			}
			res.Subtrahends = append(res.Subtrahends, absorb(sub, cur))
		}
	}

	before := cur.Len()
	cur = Subtract(cur, opts.Subtract...)
	res.Removed = before - cur.Len()

	merge := opts.Merge
	if opts.SubtractAndMerge && len(merge) == 0 {
		merge = opts.Subtract
	}
	if opts.SubtractAndMerge {
		// Keep only what survives subtraction; inherit metadata without
		// pulling in keys the fresh run no longer has.
		cur = MergeExisting(cur, merge...)
	} else {
		cur = Merge(cur, merge...)
	}

	res.Catalog = cur
	return res
}

// Subtract returns a copy of c without any key present in subs. Key equality
// alone decides removal.
func Subtract(c *Catalog, subs ...*Catalog) *Catalog {
	out := c.Clone()
	for _, sub := range subs {
		if sub.Len() == 0 {
			continue
		}
		for _, e := range sub.All() {
			out.Delete(e.Key())
		}
	}
	return out
}

// Merge returns the union of c and existing. For shared keys the existing
// comment, translations and flags are kept, references are unioned with the
// fresh ones first, and the fresh plural fills a missing one. Keys only in
// existing are appended in their own order.
func Merge(c *Catalog, existing ...*Catalog) *Catalog {
	return merge(c, true, existing)
}

// MergeExisting is Merge without adding keys that c lacks.
func MergeExisting(c *Catalog, existing ...*Catalog) *Catalog {
	return merge(c, false, existing)
}

func merge(c *Catalog, union bool, existing []*Catalog) *Catalog {
	out := c.Clone()
	for _, ex := range existing {
		if ex.Len() == 0 {
			continue
		}
		for _, old := range ex.All() {
			cur, ok := out.Get(old.Key())
			if !ok {
				if union {
					out.Put(old.Clone())
				}
				continue
			}
			out.Put(mergeEntry(cur, old))
		}
	}
	return out
}

func mergeEntry(fresh, old *Entry) *Entry {
	e := fresh.Clone()
	if old.TranslatorComment != "" {
		e.TranslatorComment = old.TranslatorComment
	}
	if old.MsgIDPlural != "" {
		e.MsgIDPlural = old.MsgIDPlural
	}
	for _, ref := range old.References {
		e.AddReference(ref)
	}
	if len(old.Translations) > 0 {
		e.Translations = slices.Clone(old.Translations)
	}
	if len(old.Flags) > 0 {
		e.Flags = slices.Clone(old.Flags)
	}
	return e
}

// absorb returns a copy of sub updated with the references and missing
// comments of the fresh entries it shares keys with.
func absorb(sub, fresh *Catalog) *Catalog {
	out := sub.Clone()
	for _, e := range out.All() {
		f, ok := fresh.Get(e.Key())
		if !ok {
			continue
		}
		for _, ref := range f.References {
			e.AddReference(ref)
		}
		if e.TranslatorComment == "" {
			e.TranslatorComment = f.TranslatorComment
		}
		if e.MsgIDPlural == "" {
			e.MsgIDPlural = f.MsgIDPlural
		}
	}
	return out
}
