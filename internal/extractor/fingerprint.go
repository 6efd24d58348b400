package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint identifies the extraction result of content under the
// extractor's current settings. Records cached under an equal fingerprint
// can be reused without parsing.
func (e *Extractor) Fingerprint(content []byte, lang Language) string {
	settings := strings.Join([]string{
		string(lang),
		e.opts.Domain,
		strconv.FormatBool(e.opts.IgnoreDomain),
		strconv.FormatBool(e.opts.AllowSyntaxErrors),
		strconv.Itoa(e.opts.MaxEvalDepth),
		strings.Join(e.opts.Table.Names(), ","),
	}, "|")

	h := sha256.New()
	h.Write([]byte(settings))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
