// Package textspan maps character offsets onto analyzed text and cuts
// context windows out of it.
//
// Offsets are rune (character) offsets, as reported by NER services. An
// Index is built once per text and translates between rune offsets and the
// byte positions the regexp package reports.
package textspan

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Index holds the byte position of every rune of a text.
type Index struct {
	text string
	// pos[i] is the byte position of rune i; the last entry is len(text).
	pos []int
}

// NewIndex builds the offset table of text.
func NewIndex(text string) *Index {
	pos := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		pos = append(pos, i)
	}
	pos = append(pos, len(text))
	return &Index{text: text, pos: pos}
}

// Len returns the number of runes in the text.
func (x *Index) Len() int {
	return len(x.pos) - 1
}

// RuneOffset converts a byte position to the offset of the rune starting at
// or after it.
func (x *Index) RuneOffset(bytePos int) int {
	return sort.SearchInts(x.pos, bytePos)
}

// Span converts a regexp match location [begin, end) in bytes to runes.
func (x *Index) Span(loc []int) (begin, end int) {
	return x.RuneOffset(loc[0]), x.RuneOffset(loc[1])
}

// Window returns [lo, hi) covering the rune range [start, end) plus radius
// runes on each side, clamped to the text.
func (x *Index) Window(start, end, radius int) (lo, hi int) {
	n := x.Len()
	lo = clamp(start-radius, 0, n)
	hi = clamp(end+radius, 0, n)
	if lo > hi {
		return lo, lo
	}
	return lo, hi
}

// Slice returns the text of the rune range [start, end), clamped.
func (x *Index) Slice(start, end int) string {
	n := x.Len()
	start, end = clamp(start, 0, n), clamp(end, 0, n)
	if start >= end {
		return ""
	}
	return x.text[x.pos[start]:x.pos[end]]
}

// Excerpt returns the whitespace-trimmed window around [start, end).
func (x *Index) Excerpt(start, end, radius int) string {
	lo, hi := x.Window(start, end, radius)
	return strings.TrimSpace(x.Slice(lo, hi))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
