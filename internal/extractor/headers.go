package extractor

import (
	"regexp"
	"strings"

	"makepot/internal/catalog"
)

var (
	headerBlockRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	headerLineRe  = regexp.MustCompile(`^[\s*#@]*([A-Za-z][A-Za-z0-9 _-]*?)\s*:\s*(.+?)\s*$`)
)

// Translatable header fields, in catalog order.
var (
	PluginHeaders = []string{"Plugin Name", "Plugin URI", "Description", "Author", "Author URI"}
	ThemeHeaders  = []string{"Theme Name", "Theme URI", "Description", "Author", "Author URI"}
)

// ParseFileHeaders reads "Key: value" lines from the first block comment of
// a plugin main file or theme stylesheet.
func ParseFileHeaders(content []byte) map[string]string {
	block := headerBlockRe.Find(content)
	if block == nil {
		return map[string]string{}
	}
	text := strings.TrimSuffix(strings.TrimPrefix(string(block), "/*"), "*/")
	headers := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		m := headerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, seen := headers[m[1]]; !seen {
			headers[m[1]] = m[2]
		}
	}
	return headers
}

// HeaderRecords turns the translatable headers of a plugin or theme into
// records. kind is "plugin" or "theme"; other kinds have no header entries.
func HeaderRecords(kind string, headers map[string]string, file, domain string) []catalog.Record {
	var fields []string
	switch kind {
	case "plugin":
		fields = PluginHeaders
	case "theme":
		fields = ThemeHeaders
	default:
		return nil
	}
	var records []catalog.Record
	for _, field := range fields {
		v := headers[field]
		if v == "" {
			continue
		}
		records = append(records, catalog.Record{
			MsgID:   v,
			Domain:  domain,
			Comment: field + " of the " + kind,
			File:    file,
		})
	}
	return records
}
