package pofile

import (
	"encoding/json"
	"fmt"
	"io"

	"makepot/internal/catalog"

	"github.com/tidwall/gjson"
)

type jsonHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type jsonEntry struct {
	Context     string   `json:"msgctxt,omitempty"`
	MsgID       string   `json:"msgid"`
	MsgIDPlural string   `json:"msgid_plural,omitempty"`
	MsgStr      []string `json:"msgstr"`
	Comment     string   `json:"extracted_comment,omitempty"`
	References  []string `json:"references,omitempty"`
	Flags       []string `json:"flags,omitempty"`
}

type jsonFile struct {
	Comment string       `json:"comment,omitempty"`
	Header  []jsonHeader `json:"header"`
	Entries []jsonEntry  `json:"entries"`
}

// WriteJSON renders f as a JSON document with an ordered entry list.
func WriteJSON(w io.Writer, f *File, opts WriteOptions) error {
	doc := jsonFile{
		Comment: f.Comment,
		Header:  make([]jsonHeader, 0, len(f.Header.Fields)),
		Entries: make([]jsonEntry, 0, f.Catalog.Len()),
	}
	for _, h := range f.Header.Fields {
		doc.Header = append(doc.Header, jsonHeader{Key: h.Key, Value: h.Value})
	}
	for _, e := range f.Catalog.All() {
		je := jsonEntry{
			Context:     e.Context,
			MsgID:       e.MsgID,
			MsgIDPlural: e.MsgIDPlural,
			Comment:     e.TranslatorComment,
			Flags:       e.Flags,
		}
		n := 1
		if e.MsgIDPlural != "" {
			n = max(len(e.Translations), 2)
		}
		for i := 0; i < n; i++ {
			je.MsgStr = append(je.MsgStr, translation(e, i))
		}
		if opts.Location {
			for _, ref := range e.References {
				je.References = append(je.References, ref.String())
			}
		}
		doc.Entries = append(doc.Entries, je)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}

// ParseJSON reads a document produced by WriteJSON.
func ParseJSON(data []byte) (*File, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(data)
	entries := doc.Get("entries")
	if !entries.IsArray() {
		return nil, fmt.Errorf("%w: missing entries list", ErrMalformed)
	}

	f := NewFile()
	f.Comment = doc.Get("comment").String()
	doc.Get("header").ForEach(func(_, h gjson.Result) bool {
		f.Header.Fields = append(f.Header.Fields, HeaderField{
			Key:   h.Get("key").String(),
			Value: h.Get("value").String(),
		})
		return true
	})

	for _, item := range entries.Array() {
		e := &catalog.Entry{
			Context:           item.Get("msgctxt").String(),
			MsgID:             item.Get("msgid").String(),
			MsgIDPlural:       item.Get("msgid_plural").String(),
			TranslatorComment: item.Get("extracted_comment").String(),
		}
		for _, s := range item.Get("msgstr").Array() {
			e.Translations = append(e.Translations, s.String())
		}
		for _, ref := range item.Get("references").Array() {
			e.AddReference(parseReference(ref.String()))
		}
		for _, flag := range item.Get("flags").Array() {
			e.Flags = append(e.Flags, flag.String())
		}
		f.Catalog.Put(e)
	}
	return f, nil
}
