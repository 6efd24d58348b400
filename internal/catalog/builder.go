package catalog

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Conflict records two occurrences of one key that declare different
// plural texts. The first-seen plural is kept.
type Conflict struct {
	Key      Key
	Kept     string
	Rejected string
	At       Reference
}

// Batch is the record set extracted from one file. Index is the file's
// position in discovery order.
type Batch struct {
	Index   int
	File    string
	Records []Record
}

// Builder folds extraction records into a Catalog. It is the single writer
// of its catalog: feed it from one goroutine, or through Consume.
type Builder struct {
	cat       *Catalog
	conflicts []Conflict
}

// NewBuilder returns a builder over an empty catalog.
func NewBuilder() *Builder {
	return &Builder{cat: New()}
}

// Add folds one record into the catalog.
func (b *Builder) Add(r Record) {
	if r.MsgID == "" {
		return
	}
	ref := r.Reference()
	existing, ok := b.cat.Get(r.Key())
	if !ok {
		e := &Entry{
			Context:           r.Context,
			MsgID:             r.MsgID,
			MsgIDPlural:       r.Plural,
			TranslatorComment: r.Comment,
		}
		if ref.File != "" {
			e.References = []Reference{ref}
		}
		b.cat.Put(e)
		return
	}

	if ref.File != "" {
		existing.AddReference(ref)
	}
	if existing.TranslatorComment == "" && r.Comment != "" {
		existing.TranslatorComment = r.Comment
	}
	switch {
	case r.Plural == "":
	case existing.MsgIDPlural == "":
		existing.MsgIDPlural = r.Plural
	case existing.MsgIDPlural != r.Plural:
		c := Conflict{Key: r.Key(), Kept: existing.MsgIDPlural, Rejected: r.Plural, At: ref}
		b.conflicts = append(b.conflicts, c)
		log.Warn().
			Str("msgid", r.MsgID).
			Str("context", r.Context).
			Str("kept", c.Kept).
			Str("rejected", c.Rejected).
			Str("at", ref.String()).
			Msg("Conflicting plural text")
	}
}

// AddAll folds records in order.
func (b *Builder) AddAll(records []Record) {
	for _, r := range records {
		b.Add(r)
	}
}

// Consume drains batches until the channel is closed, folding them in Index
// order regardless of arrival order. Indexes must be dense from 0; a gap
// holds back later batches until it is filled or the channel closes. A
// batch whose index was already folded or is already pending is dropped.
func (b *Builder) Consume(batches <-chan Batch) {
	pending := make(map[int]Batch)
	next := 0
	for batch := range batches {
		if _, dup := pending[batch.Index]; dup || batch.Index < next {
			log.Warn().Int("index", batch.Index).Str("file", batch.File).Msg("Dropping duplicate batch")
			continue
		}
		pending[batch.Index] = batch
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			b.AddAll(ready.Records)
			next++
		}
	}
	// Flush whatever is left after a gap (cancelled or skipped files).
	indexes := lo.Keys(pending)
	slices.Sort(indexes)
	for _, i := range indexes {
		b.AddAll(pending[i].Records)
	}
}

// Catalog returns the built catalog.
func (b *Builder) Catalog() *Catalog {
	return b.cat
}

// Conflicts returns the plural conflicts seen so far.
func (b *Builder) Conflicts() []Conflict {
	return b.conflicts
}
