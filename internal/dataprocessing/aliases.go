package dataprocessing

import (
	"strings"

	"sidebyside/pkg/contracts/domain"
)

// Unresolved marks a header cell that matched no alias.
const Unresolved domain.Field = ""

// AliasTable maps normalized header text to a canonical survey field.
// It is built once and only read afterwards, so one table can be shared freely.
type AliasTable struct {
	lookup map[string]domain.Field
}

// NewAliasTable builds a table from per-field alias lists. Aliases are
// normalized the same way header cells are.
func NewAliasTable(aliases map[domain.Field][]string) *AliasTable {
	t := &AliasTable{lookup: make(map[string]domain.Field)}
	for _, f := range domain.Fields {
		for _, a := range aliases[f] {
			t.lookup[normalizeHeader(a)] = f
		}
	}
	return t
}

// DefaultAliases returns the alias table used by the survey exports we receive.
func DefaultAliases() *AliasTable {
	return NewAliasTable(map[domain.Field][]string{
		domain.FieldMD:  {"md", "measured depth", "survey depth", "sd", "survey"},
		domain.FieldINC: {"inc", "inclination"},
		domain.FieldAZ:  {"az", "azi", "azimuth", "azm"},
	})
}

// Resolve returns the canonical field for one header cell, or Unresolved.
func (t *AliasTable) Resolve(cell string) domain.Field {
	if f, ok := t.lookup[normalizeHeader(cell)]; ok {
		return f
	}
	return Unresolved
}

// Standardize resolves each header cell in order. The result has the same
// length as headers; callers decide whether Unresolved entries are acceptable.
func (t *AliasTable) Standardize(headers []string) []domain.Field {
	out := make([]domain.Field, len(headers))
	for i, h := range headers {
		out[i] = t.Resolve(h)
	}
	return out
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// canonicalHeader checks that fields is exactly one each of MD, INC and AZ.
func canonicalHeader(fields []domain.Field) bool {
	if len(fields) != len(domain.Fields) {
		return false
	}
	seen := make(map[domain.Field]bool, len(fields))
	for _, f := range fields {
		if !f.Valid() || seen[f] {
			return false
		}
		seen[f] = true
	}
	return true
}
