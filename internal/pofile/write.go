package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"makepot/internal/catalog"

	"github.com/chai2010/gettext-go/po"
	"github.com/samber/lo"
)

// WriteOptions controls POT rendering.
type WriteOptions struct {
	// Location writes "#:" reference lines.
	Location bool
}

// WriteFile renders f to path, creating parent directories.
func WriteFile(path string, f *File, opts WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(out, f, opts); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// Write renders f as POT/PO text. Entries are written context by context in
// catalog order; po.File.Data would re-sort them by reference.
func Write(w io.Writer, f *File, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(headerString(f))
	for _, e := range f.Catalog.All() {
		bw.WriteString("\n")
		bw.WriteString(entryString(e, opts))
	}
	return bw.Flush()
}

// headerString renders the file comment and the header entry. po writes an
// empty msgid without quotes, so the keyword lines are spelled out here.
func headerString(f *File) string {
	comment := po.Comment{TranslatorComment: f.Comment}.String()
	text := f.Header.text()
	body := strings.TrimPrefix(po.Message{MsgStr: text}.String(), "msgid msgstr ")
	lead := "msgid \"\"\nmsgstr "
	if text != "" {
		lead += "\"\"\n"
	}
	return comment + lead + body
}

func entryString(e *catalog.Entry, opts WriteOptions) string {
	m := toMessage(e)
	if !opts.Location || len(e.References) == 0 {
		return m.String()
	}
	if lo.EveryBy(e.References, func(r catalog.Reference) bool { return r.Line > 0 }) {
		for _, ref := range e.References {
			m.ReferenceFile = append(m.ReferenceFile, ref.File)
			m.ReferenceLine = append(m.ReferenceLine, ref.Line)
		}
		return m.String()
	}

	// po renders every reference as file:line; header and manifest entries
	// carry bare file references.
	refs := lo.Map(e.References, func(r catalog.Reference, _ int) string { return r.String() })
	extracted := po.Comment{ExtractedComment: m.ExtractedComment}.String()
	m.ExtractedComment = ""
	return extracted + "#: " + strings.Join(refs, " ") + "\n" + m.String()
}

func toMessage(e *catalog.Entry) po.Message {
	m := po.Message{
		Comment: po.Comment{
			ExtractedComment: e.TranslatorComment,
			Flags:            e.Flags,
		},
		MsgContext:  e.Context,
		MsgId:       e.MsgID,
		MsgIdPlural: e.MsgIDPlural,
	}
	if e.MsgIDPlural == "" {
		m.MsgStr = translation(e, 0)
		return m
	}
	n := max(len(e.Translations), 2)
	for i := 0; i < n; i++ {
		m.MsgStrPlural = append(m.MsgStrPlural, translation(e, i))
	}
	return m
}

func translation(e *catalog.Entry, i int) string {
	if i < len(e.Translations) {
		return e.Translations[i]
	}
	return ""
}
