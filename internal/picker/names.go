// Package picker holds the no-repeat draw engine and the reconciliation pass
// that keeps a state document consistent with its dish lists.
package picker

import "strings"

// CanonicalName collapses whitespace runs to a single space and trims the ends
func CanonicalName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// DishKey is the case-insensitive identity of a dish name
func DishKey(name string) string {
	return strings.ToLower(CanonicalName(name))
}

// CleanDishes canonicalizes names, drops empties and drops case-insensitive
// duplicates. The first spelling of a dish wins and order is kept.
func CleanDishes(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		name := CanonicalName(item)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// ContainsDish reports whether name matches any dish case-insensitively
func ContainsDish(dishes []string, name string) bool {
	_, ok := canonicalIndex(dishes)[DishKey(name)]
	return ok
}

// canonicalIndex maps dish keys to the canonical spelling
func canonicalIndex(dishes []string) map[string]string {
	m := make(map[string]string, len(dishes))
	for _, d := range dishes {
		key := DishKey(d)
		if _, ok := m[key]; !ok {
			m[key] = d
		}
	}
	return m
}

// matchDishes keeps entries that name a current dish, rewritten to canonical
// casing, without duplicates
func matchDishes(entries, dishes []string) []string {
	index := canonicalIndex(dishes)
	out := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		key := DishKey(e)
		canonical, ok := index[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canonical)
	}
	return out
}
