// Package models holds the value types produced and consumed by the release
// note analysis pipeline.
//
// All types are plain data with snake_case JSON tags. Offsets are character
// (rune) offsets into the analyzed text and spans are half-open [start, end).
package models
