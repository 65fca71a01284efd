package middleware

import (
	"sort"
	"strings"

	"console/config"
)

// RouteTable maps page paths to the permission they require.
type RouteTable struct {
	exact    map[string]string
	prefixes []config.RouteRule // longest first
}

// NewRouteTable builds a table from rules. Later duplicates of a path win.
func NewRouteTable(rules []config.RouteRule) *RouteTable {
	exact := make(map[string]string, len(rules))
	for _, rule := range rules {
		if rule.Path == "" {
			continue
		}
		exact[rule.Path] = rule.Permission
	}

	prefixes := make([]config.RouteRule, 0, len(exact))
	for path, perm := range exact {
		prefixes = append(prefixes, config.RouteRule{Path: path, Permission: perm})
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i].Path) != len(prefixes[j].Path) {
			return len(prefixes[i].Path) > len(prefixes[j].Path)
		}

		return prefixes[i].Path < prefixes[j].Path
	})

	return &RouteTable{exact: exact, prefixes: prefixes}
}

// Lookup returns the permission required for path: an exact match wins, otherwise the longest prefix.
// Prefixes match on raw string boundaries, so "/admin/user" also covers "/admin/users".
func (t *RouteTable) Lookup(path string) (string, bool) {
	if perm, ok := t.exact[path]; ok {
		return perm, true
	}

	for _, rule := range t.prefixes {
		if strings.HasPrefix(path, rule.Path) {
			return rule.Permission, true
		}
	}

	return "", false
}
