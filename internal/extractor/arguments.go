package extractor

import (
	"makepot/internal/catalog"
)

// extractArguments reads the literal of every role-bound argument of m.
// A single non-literal text, context or domain argument fails the match;
// count expressions are never read.
func extractArguments(m CallMatch, file string) (catalog.Record, bool) {
	d, src := m.unit.d, m.unit.src
	rec := catalog.Record{File: file, Line: m.Line}
	for i, role := range m.Signature.Roles {
		if role == RoleCount {
			continue
		}
		v, ok := d.StringValue(m.Args[i], src)
		if !ok {
			return catalog.Record{}, false
		}
		switch role {
		case RoleSingular:
			rec.MsgID = v
		case RolePlural:
			rec.Plural = v
		case RoleContext:
			rec.Context = v
		case RoleDomain:
			rec.Domain = v
		}
	}
	return rec, true
}
