package extractor

import (
	"fmt"
	"strings"

	"makepot/internal/catalog"

	"github.com/tidwall/gjson"
)

// manifestField maps a path into a JSON manifest to the context its strings
// are extracted with. "#" walks array items, "*" walks object members.
type manifestField struct {
	path    string
	context string
}

var blockJSONFields = []manifestField{
	{"title", "block title"},
	{"description", "block description"},
	{"keywords", "block keyword"},
	{"styles.#.label", "block style label"},
	{"variations.#.title", "block variation title"},
	{"variations.#.description", "block variation description"},
	{"variations.#.keywords", "block variation keyword"},
}

var themeJSONFields = []manifestField{
	{"title", "Style variation name"},
	{"settings.typography.fontSizes.#.name", "Font size name"},
	{"settings.typography.fontFamilies.#.name", "Font family name"},
	{"settings.color.palette.#.name", "Color name"},
	{"settings.color.gradients.#.name", "Gradient name"},
	{"settings.color.duotone.#.name", "Duotone name"},
	{"settings.spacing.spacingSizes.#.name", "Space size name"},
	{"settings.blocks.*.typography.fontSizes.#.name", "Font size name"},
	{"settings.blocks.*.typography.fontFamilies.#.name", "Font family name"},
	{"settings.blocks.*.color.palette.#.name", "Color name"},
	{"settings.blocks.*.color.gradients.#.name", "Gradient name"},
	{"settings.blocks.*.spacing.spacingSizes.#.name", "Space size name"},
	{"customTemplates.#.title", "Custom template name"},
	{"templateParts.#.title", "Template part name"},
}

// ExtractManifest extracts the translatable fields of a block.json or
// theme.json document. Manifest records carry no line number.
func (e *Extractor) ExtractManifest(name string, content []byte, lang Language) ([]catalog.Record, error) {
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("%s: %w: invalid JSON", name, ErrSyntax)
	}
	doc := gjson.ParseBytes(content)

	var fields []manifestField
	domain := e.opts.Domain
	switch lang {
	case LangBlockJSON:
		fields = blockJSONFields
		domain = doc.Get("textdomain").String()
		if e.FilterDomain() && domain != e.opts.Domain {
			return nil, nil
		}
	case LangThemeJSON:
		fields = themeJSONFields
	default:
		return nil, fmt.Errorf("%s: %w: %q", name, ErrUnsupportedLanguage, lang)
	}

	var records []catalog.Record
	for _, f := range fields {
		var values []string
		collectStrings(doc, strings.Split(f.path, "."), &values)
		for _, v := range values {
			if v == "" {
				continue
			}
			records = append(records, catalog.Record{
				MsgID:   v,
				Context: f.context,
				Domain:  domain,
				File:    name,
			})
		}
	}
	return records, nil
}

func collectStrings(v gjson.Result, path []string, out *[]string) {
	if !v.Exists() {
		return
	}
	if len(path) == 0 {
		switch {
		case v.Type == gjson.String:
			*out = append(*out, v.String())
		case v.IsArray():
			for _, item := range v.Array() {
				if item.Type == gjson.String {
					*out = append(*out, item.String())
				}
			}
		}
		return
	}
	switch seg := path[0]; seg {
	case "#":
		if !v.IsArray() {
			return
		}
		for _, item := range v.Array() {
			collectStrings(item, path[1:], out)
		}
	case "*":
		if !v.IsObject() {
			return
		}
		v.ForEach(func(_, member gjson.Result) bool {
			collectStrings(member, path[1:], out)
			return true
		})
	default:
		if !v.IsObject() {
			return
		}
		collectStrings(v.Get(seg), path[1:], out)
	}
}
