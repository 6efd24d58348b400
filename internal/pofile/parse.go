package pofile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"makepot/internal/catalog"

	"github.com/chai2010/gettext-go/po"
	"github.com/samber/lo"
)

var ErrMalformed = errors.New("malformed PO file")

var bom = []byte("\ufeff")

// ParseFile parses the POT/PO file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	f, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse reads a POT/PO catalog. Obsolete (#~) entries are dropped. The
// header entry fills File.Header and its "#" comment becomes File.Comment.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*File, error) {
	data = bytes.TrimPrefix(data, bom)
	lines := strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n")
	if n, ok := orphanString(lines); ok {
		return nil, fmt.Errorf("line %d: %w: string without keyword", n, ErrMalformed)
	}

	pf, err := po.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	f := NewFile()
	f.Comment = pf.MimeHeader.TranslatorComment
	f.Header = fromMimeHeader(pf.MimeHeader)
	for _, m := range pf.Messages {
		f.Catalog.Put(fromMessage(m, lines))
	}
	return f, nil
}

// orphanString finds a quoted continuation line with no keyword before it.
// po.Load never advances past such a line.
func orphanString(lines []string) (int, bool) {
	prev := ""
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, `"`) && (prev == "" || strings.HasPrefix(prev, "#")) {
			return i + 1, true
		}
		prev = line
	}
	return 0, false
}

func fromMessage(m po.Message, lines []string) *catalog.Entry {
	e := &catalog.Entry{
		Context:           m.MsgContext,
		MsgID:             m.MsgId,
		MsgIDPlural:       m.MsgIdPlural,
		TranslatorComment: m.ExtractedComment,
	}
	for _, flag := range m.Flags {
		if flag != "" {
			e.Flags = append(e.Flags, flag)
		}
	}
	for i, file := range m.ReferenceFile {
		e.AddReference(catalog.Reference{File: file, Line: m.ReferenceLine[i]})
	}
	for _, ref := range bareReferences(lines, m.StartLine) {
		e.AddReference(ref)
	}

	if m.MsgIdPlural != "" || len(m.MsgStrPlural) > 0 {
		e.Translations = append([]string(nil), m.MsgStrPlural...)
	} else {
		e.Translations = []string{m.MsgStr}
	}
	return e
}

// bareReferences returns the "#:" tokens without a line number in the
// comment block starting at the 1-based line start. po only keeps
// file:line references.
func bareReferences(lines []string, start int) []catalog.Reference {
	var refs []catalog.Reference
	for i := start - 1; i >= 0 && i < len(lines) && strings.HasPrefix(lines[i], "#"); i++ {
		if !strings.HasPrefix(lines[i], "#:") {
			continue
		}
		for _, tok := range strings.Fields(lines[i][2:]) {
			if !strings.Contains(tok, ":") {
				refs = append(refs, catalog.Reference{File: tok})
			}
		}
	}
	return refs
}

// fromMimeHeader lists the known fields in POT order, then the rest by key.
func fromMimeHeader(h po.Header) Header {
	var out Header
	known := []HeaderField{
		{"Project-Id-Version", h.ProjectIdVersion},
		{"Report-Msgid-Bugs-To", h.ReportMsgidBugsTo},
		{"Last-Translator", h.LastTranslator},
		{"Language-Team", h.LanguageTeam},
		{"Language", h.Language},
		{"MIME-Version", h.MimeVersion},
		{"Content-Type", h.ContentType},
		{"Content-Transfer-Encoding", h.ContentTransferEncoding},
		{"POT-Creation-Date", h.POTCreationDate},
		{"PO-Revision-Date", h.PORevisionDate},
		{"Plural-Forms", h.PluralForms},
		{"X-Generator", h.XGenerator},
	}
	for _, f := range known {
		if f.Value != "" {
			out.Fields = append(out.Fields, f)
		}
	}
	keys := lo.Keys(h.UnknowFields)
	sort.Strings(keys)
	for _, k := range keys {
		out.Fields = append(out.Fields, HeaderField{Key: k, Value: h.UnknowFields[k]})
	}
	return out
}
