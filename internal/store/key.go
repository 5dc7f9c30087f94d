package store

import "strings"

// NormalizeResource canonicalizes a resource name for use as a map/row key:
// leading and trailing whitespace is stripped and internal whitespace runs
// collapse to a single space. Case is preserved ("Base Metals" and
// "base metals" are distinct keys). Idempotent.
func NormalizeResource(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// UnitKey builds the mining-unit row key for a planet/resource pair
// ("<planetID>_<resource>", resource normalized).
func UnitKey(planetID, resource string) string {
	return planetID + "_" + NormalizeResource(resource)
}
