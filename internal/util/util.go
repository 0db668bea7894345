// Package util contains small helper functions used across Grotto packages.
package util

import (
	"sort"
	"strings"
	"unicode"
)

// MakeTextList gives a nice list of things based on their display name.
func MakeTextList(items []string, articles bool) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	withArts := make([]string, len(items))
	for i := range items {
		art := ""
		item := items[i]
		if articles {
			art = ArticleFor(item, false)
			art += " "
		}
		withArts[i] = art + item
	}

	if len(withArts) == 1 {
		output += withArts[0]
	} else if len(withArts) == 2 {
		output += withArts[0] + " and " + withArts[1]
	} else {
		// if its more than two, use an oxford comma
		withArts[len(withArts)-1] = "and " + withArts[len(withArts)-1]
		output += strings.Join(withArts, ", ")
	}

	return output
}

// ArticleFor returns the article for the given string. It will be capitalized
// the same as the string. If definite is true, the returned value will be
// "the" capitalized as described; otherwise, it will be "a"/"an" capitalized
// as described.
func ArticleFor(s string, definite bool) string {
	sRunes := []rune(s)

	if len(sRunes) < 1 {
		return ""
	}

	leadingUpper := unicode.IsUpper(sRunes[0])
	allCaps := leadingUpper
	if leadingUpper && len(sRunes) > 1 {
		allCaps = unicode.IsUpper(sRunes[1])
	}

	art := ""
	if definite {
		if allCaps {
			art = "THE"
		} else if leadingUpper {
			art = "The"
		} else {
			art = "the"
		}
	} else {
		if allCaps || leadingUpper {
			art = "A"
		} else {
			art = "a"
		}

		sUpperRunes := []rune(strings.ToUpper(s))
		first := sUpperRunes[0]
		if first == 'A' || first == 'E' || first == 'I' || first == 'O' || first == 'U' {
			if allCaps {
				art += "N"
			} else {
				art += "n"
			}
		}
	}

	return art
}

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, len(m))
	idx := 0

	for k := range m {
		keys[idx] = k
		idx++
	}

	sort.Strings(keys)

	return keys
}

// SortBy returns a copy of sl sorted using the provided less function. lt
// must return whether l comes before r.
func SortBy[T any](sl []T, lt func(l, r T) bool) []T {
	out := make([]T, len(sl))
	copy(out, sl)

	sort.Slice(out, func(i, j int) bool {
		return lt(out[i], out[j])
	})

	return out
}

// SliceIndexOf returns the index of the first occurrence of v in sl, or -1 if
// v is not present.
func SliceIndexOf[T comparable](v T, sl []T) int {
	for i := range sl {
		if sl[i] == v {
			return i
		}
	}
	return -1
}

// SliceRemove returns a copy of sl with the first occurrence of v removed. If
// v is not present, the copy is identical to sl.
func SliceRemove[T comparable](v T, sl []T) []T {
	out := make([]T, 0, len(sl))
	removed := false
	for i := range sl {
		if !removed && sl[i] == v {
			removed = true
			continue
		}
		out = append(out, sl[i])
	}
	return out
}

// SortedInts returns a copy of the given int slice, sorted ascending.
func SortedInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	return out
}
