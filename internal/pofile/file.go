// Package pofile reads and writes gettext POT/PO catalogs.
package pofile

import (
	"strconv"
	"strings"

	"makepot/internal/catalog"
)

// HeaderField is one "Key: value" line of the header entry.
type HeaderField struct {
	Key   string
	Value string
}

// Header is the ordered field list of a catalog's header entry.
type Header struct {
	Fields []HeaderField
}

// Get returns the value of key.
func (h *Header) Get(key string) string {
	for _, f := range h.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

// Set replaces key, or appends it.
func (h *Header) Set(key, value string) {
	for i, f := range h.Fields {
		if strings.EqualFold(f.Key, key) {
			h.Fields[i].Value = value
			return
		}
	}
	h.Fields = append(h.Fields, HeaderField{Key: key, Value: value})
}

// SetDefault sets key unless it already has a value.
func (h *Header) SetDefault(key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}

func (h *Header) text() string {
	var b strings.Builder
	for _, f := range h.Fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// File is a parsed or to-be-written catalog file.
type File struct {
	// Comment is the leading file comment, without "# " prefixes.
	Comment string
	Header  Header
	Catalog *catalog.Catalog
}

// NewFile returns an empty file.
func NewFile() *File {
	return &File{Catalog: catalog.New()}
}

// parseReference splits "file:line". A reference without a numeric suffix
// is a bare file.
func parseReference(s string) catalog.Reference {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return catalog.Reference{File: s}
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return catalog.Reference{File: s}
	}
	return catalog.Reference{File: s[:i], Line: n}
}
