package domain

import (
	"slices"
	"strings"
	"unicode"
)

// NormalizeTags trims, lowercases, strips leading '#', sorts and removes
// duplicate and empty tags. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if n := normalizeTag(tag); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// normalizeTag is idempotent: "# #Urgent " and "urgent" both become "urgent".
func normalizeTag(tag string) string {
	tag = strings.TrimLeftFunc(tag, func(r rune) bool { return r == '#' || unicode.IsSpace(r) })
	return strings.ToLower(strings.TrimRightFunc(tag, unicode.IsSpace))
}

// SplitTags splits a comma-separated tag list and normalizes it.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

// HasAnyTag reports whether tags intersects want. An empty want matches everything.
func HasAnyTag(tags, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if slices.Contains(tags, normalizeTag(w)) {
			return true
		}
	}
	return false
}

// AddTags merges extra into tags.
func AddTags(tags, extra []string) []string {
	return NormalizeTags(append(slices.Clone(tags), extra...))
}

// RemoveTags drops every tag in remove.
func RemoveTags(tags, remove []string) []string {
	drop := NormalizeTags(remove)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(drop, tag) {
			out = append(out, tag)
		}
	}
	return out
}
