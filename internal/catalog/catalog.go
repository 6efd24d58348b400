package catalog

import (
	"fmt"
	"slices"
)

// Key identifies a catalog entry. An empty Context means "no context".
type Key struct {
	Context string
	MsgID   string
}

// Reference is a source location of an occurrence. Line 0 means the
// location has no meaningful line (manifest and header entries).
type Reference struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

func (r Reference) String() string {
	if r.Line <= 0 {
		return r.File
	}
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

// Record is the immutable result of extracting one translation call.
// Workers produce records; only the Builder turns them into entries.
type Record struct {
	MsgID   string `json:"msgid"`
	Plural  string `json:"plural,omitempty"`
	Context string `json:"context,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Comment string `json:"comment,omitempty"`
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
}

// Key returns the catalog key of the record.
func (r Record) Key() Key {
	return Key{Context: r.Context, MsgID: r.MsgID}
}

// Reference returns the record's source location.
func (r Record) Reference() Reference {
	return Reference{File: r.File, Line: r.Line}
}

// Entry is a single catalog entry.
type Entry struct {
	Context           string
	MsgID             string
	MsgIDPlural       string
	TranslatorComment string
	References        []Reference

	// Translations and Flags come from existing PO files and are carried
	// through reconciliation untouched.
	Translations []string
	Flags        []string
}

// Key returns the identity of the entry.
func (e *Entry) Key() Key {
	return Key{Context: e.Context, MsgID: e.MsgID}
}

// HasReference reports whether ref is already recorded.
func (e *Entry) HasReference(ref Reference) bool {
	return slices.Contains(e.References, ref)
}

// AddReference appends ref unless it is already present.
func (e *Entry) AddReference(ref Reference) bool {
	if e.HasReference(ref) {
		return false
	}
	e.References = append(e.References, ref)
	return true
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.References = slices.Clone(e.References)
	c.Translations = slices.Clone(e.Translations)
	c.Flags = slices.Clone(e.Flags)
	return &c
}

type bucket struct {
	entries map[string]*Entry
	order   []string
}

// Catalog maps context -> msgid -> entry, preserving insertion order at both
// levels. It is not safe for concurrent mutation; see Builder.
type Catalog struct {
	buckets map[string]*bucket
	order   []string
	size    int
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{buckets: make(map[string]*bucket)}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

// Get returns the entry stored under key.
func (c *Catalog) Get(key Key) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	b, ok := c.buckets[key.Context]
	if !ok {
		return nil, false
	}
	e, ok := b.entries[key.MsgID]
	return e, ok
}

// Has reports whether key is present.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.Get(key)
	return ok
}

// Put stores e under its key. An existing entry with the same key is
// replaced in place, keeping its position.
func (c *Catalog) Put(e *Entry) {
	b, ok := c.buckets[e.Context]
	if !ok {
		b = &bucket{entries: make(map[string]*Entry)}
		c.buckets[e.Context] = b
		c.order = append(c.order, e.Context)
	}
	if _, exists := b.entries[e.MsgID]; !exists {
		b.order = append(b.order, e.MsgID)
		c.size++
	}
	b.entries[e.MsgID] = e
}

// Delete removes key. Empty contexts are dropped.
func (c *Catalog) Delete(key Key) bool {
	b, ok := c.buckets[key.Context]
	if !ok {
		return false
	}
	if _, ok := b.entries[key.MsgID]; !ok {
		return false
	}
	delete(b.entries, key.MsgID)
	b.order = slices.DeleteFunc(b.order, func(id string) bool { return id == key.MsgID })
	c.size--
	if len(b.entries) == 0 {
		delete(c.buckets, key.Context)
		c.order = slices.DeleteFunc(c.order, func(ctx string) bool { return ctx == key.Context })
	}
	return true
}

// Contexts returns the contexts in insertion order.
func (c *Catalog) Contexts() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

// Entries returns the entries of one context in insertion order.
func (c *Catalog) Entries(context string) []*Entry {
	if c == nil {
		return nil
	}
	b, ok := c.buckets[context]
	if !ok {
		return nil
	}
	out := make([]*Entry, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entries[id])
	}
	return out
}

// All returns every entry, context by context, in insertion order.
func (c *Catalog) All() []*Entry {
	if c == nil {
		return nil
	}
	out := make([]*Entry, 0, c.size)
	for _, ctx := range c.order {
		out = append(out, c.Entries(ctx)...)
	}
	return out
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for _, e := range c.All() {
		out.Put(e.Clone())
	}
	return out
}
