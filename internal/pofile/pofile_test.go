package pofile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"makepot/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const samplePOT = `# Copyright (C) 2026 Acme
# This file is distributed under the GPL.
msgid ""
msgstr ""
"Project-Id-Version: Acme 1.0\n"
"Content-Type: text/plain; charset=UTF-8\n"

#. greeting
#: a.php:3 b.js:7
msgid "Hello"
msgstr ""

#: a.php:9
msgid "%d item"
msgid_plural "%d items"
msgstr[0] ""
msgstr[1] ""

msgctxt "verb"
msgid "Post"
msgstr ""
`

func sampleFile() *File {
	f := NewFile()
	f.Comment = "Copyright (C) 2026 Acme\nThis file is distributed under the GPL."
	f.Header.Set("Project-Id-Version", "Acme 1.0")
	f.Header.Set("Content-Type", "text/plain; charset=UTF-8")
	f.Catalog.Put(&catalog.Entry{
		MsgID:             "Hello",
		TranslatorComment: "greeting",
		References:        []catalog.Reference{{File: "a.php", Line: 3}, {File: "b.js", Line: 7}},
	})
	f.Catalog.Put(&catalog.Entry{Context: "verb", MsgID: "Post"})
	f.Catalog.Put(&catalog.Entry{
		MsgID:       "%d item",
		MsgIDPlural: "%d items",
		References:  []catalog.Reference{{File: "a.php", Line: 9}},
	})
	return f
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleFile(), WriteOptions{Location: true}))
	assert.Equal(t, samplePOT, buf.String())
}

func TestWrite_NoLocation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleFile(), WriteOptions{}))
	assert.NotContains(t, buf.String(), "#:")
	assert.Contains(t, buf.String(), "#. greeting\nmsgid \"Hello\"")
}

func TestWrite_MultilineAndEscapes(t *testing.T) {
	f := NewFile()
	f.Catalog.Put(&catalog.Entry{MsgID: "Line one\nLine \"two\"\n"})
	f.Catalog.Put(&catalog.Entry{MsgID: "Tab\there", Flags: []string{"php-format"}})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, WriteOptions{}))
	out := buf.String()
	assert.Contains(t, out, "msgid \"Line one\\n\"\n\"Line \\\"two\\\"\\n\"\nmsgstr \"\"\n")
	assert.Contains(t, out, "#, php-format\nmsgid \"Tab\\there\"")
}

func TestWrite_BareReferences(t *testing.T) {
	f := NewFile()
	f.Catalog.Put(&catalog.Entry{
		MsgID:             "Acme Widgets",
		TranslatorComment: "Plugin Name of the plugin",
		References:        []catalog.Reference{{File: "acme.php"}, {File: "inc/admin.php", Line: 4}},
		Flags:             []string{"php-format"},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, WriteOptions{Location: true}))
	assert.Equal(t, "msgid \"\"\nmsgstr \"\"\n\n"+
		"#. Plugin Name of the plugin\n"+
		"#: acme.php inc/admin.php:4\n"+
		"#, php-format\n"+
		"msgid \"Acme Widgets\"\n"+
		"msgstr \"\"\n", buf.String())

	back, err := Parse(&buf)
	require.NoError(t, err)
	e, ok := back.Catalog.Get(catalog.Key{MsgID: "Acme Widgets"})
	require.True(t, ok)
	assert.ElementsMatch(t, []catalog.Reference{{File: "acme.php"}, {File: "inc/admin.php", Line: 4}}, e.References)
	assert.Equal(t, []string{"php-format"}, e.Flags)
}

func TestParse_UnknownHeaderFields(t *testing.T) {
	src := "msgid \"\"\n" +
		"msgstr \"\"\n" +
		"\"X-Domain: acme\\n\"\n" +
		"\"Project-Id-Version: Acme\\n\"\n" +
		"\"Plural-Forms: nplurals=2; plural=(n != 1);\\n\"\n" +
		"\"X-Generator: makepot\\n\"\n" +
		"\"Language: fr\\n\"\n"

	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []HeaderField{
		{Key: "Project-Id-Version", Value: "Acme"},
		{Key: "Language", Value: "fr"},
		{Key: "Plural-Forms", Value: "nplurals=2; plural=(n != 1);"},
		{Key: "X-Generator", Value: "makepot"},
		{Key: "X-Domain", Value: "acme"},
	}, f.Header.Fields)
	assert.Zero(t, f.Catalog.Len())
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	require.NoError(t, err)

	assert.Equal(t, "Copyright (C) 2026 Acme\nThis file is distributed under the GPL.", f.Comment)
	assert.Equal(t, "Acme 1.0", f.Header.Get("Project-Id-Version"))
	assert.Equal(t, "text/plain; charset=UTF-8", f.Header.Get("content-type"))
	require.Equal(t, 3, f.Catalog.Len())

	hello, ok := f.Catalog.Get(catalog.Key{MsgID: "Hello"})
	require.True(t, ok)
	assert.Equal(t, "greeting", hello.TranslatorComment)
	assert.Equal(t, []catalog.Reference{{File: "a.php", Line: 3}, {File: "b.js", Line: 7}}, hello.References)

	plural, ok := f.Catalog.Get(catalog.Key{MsgID: "%d item"})
	require.True(t, ok)
	assert.Equal(t, "%d items", plural.MsgIDPlural)
	assert.Equal(t, []string{"", ""}, plural.Translations)

	assert.True(t, f.Catalog.Has(catalog.Key{Context: "verb", MsgID: "Post"}))
}

func TestParse_RoundTrip(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePOT))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, WriteOptions{Location: true}))
	assert.Equal(t, samplePOT, buf.String())
}

func TestParse_Details(t *testing.T) {
	src := "\ufeffmsgid \"\"\n" +
		"msgstr \"Language: de\\n\"\n" +
		"\n" +
		"#. first\n" +
		"#. second\n" +
		"#: inc/a.php:12 inc/b.php\n" +
		"#, fuzzy, php-format\n" +
		"msgid \"\"\n" +
		"\"Multi \"\n" +
		"\"line\"\n" +
		"msgstr \"Mehr\"\n" +
		"\n" +
		"#~ msgid \"Gone\"\n" +
		"#~ msgstr \"Weg\"\n"

	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "de", f.Header.Get("Language"))
	require.Equal(t, 1, f.Catalog.Len())

	e, ok := f.Catalog.Get(catalog.Key{MsgID: "Multi line"})
	require.True(t, ok)
	assert.Equal(t, "first\nsecond", e.TranslatorComment)
	assert.Equal(t, []catalog.Reference{{File: "inc/a.php", Line: 12}, {File: "inc/b.php"}}, e.References)
	assert.Equal(t, []string{"fuzzy", "php-format"}, e.Flags)
	assert.Equal(t, []string{"Mehr"}, e.Translations)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"unknown keyword": "msgfoo \"x\"\n",
		"unquoted":        "msgid Hello\n",
		"orphan string":   "\"dangling\"\n",
		"bad index":       "msgid \"a\"\nmsgid_plural \"b\"\nmsgstr[x] \"\"\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWriteFile_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages", "acme.pot")
	require.NoError(t, WriteFile(path, sampleFile(), WriteOptions{Location: true}))

	f, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Catalog.Len())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.pot"))
	assert.Error(t, err)
}

func TestJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleFile(), WriteOptions{Location: true}))

	doc := gjson.ParseBytes(buf.Bytes())
	assert.Equal(t, "Hello", doc.Get("entries.0.msgid").String())
	assert.Equal(t, "a.php:3", doc.Get("entries.0.references.0").String())
	assert.Equal(t, int64(2), doc.Get("entries.1.msgstr.#").Int())
	assert.Equal(t, "verb", doc.Get("entries.2.msgctxt").String())
	assert.Equal(t, "Project-Id-Version", doc.Get("header.0.key").String())

	f, err := ParseJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Acme 1.0", f.Header.Get("Project-Id-Version"))
	assert.Equal(t, sampleFile().Comment, f.Comment)
	require.Equal(t, 3, f.Catalog.Len())

	hello, ok := f.Catalog.Get(catalog.Key{MsgID: "Hello"})
	require.True(t, ok)
	assert.Equal(t, "greeting", hello.TranslatorComment)
	assert.Equal(t, []catalog.Reference{{File: "a.php", Line: 3}, {File: "b.js", Line: 7}}, hello.References)
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte("{"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseJSON([]byte(`{"header": []}`))
	assert.ErrorIs(t, err, ErrMalformed)
}
