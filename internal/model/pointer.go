package model

import "strings"

// Pointer is a position in generated text. Line and Column are 0-based; Pos
// is the byte offset.
type Pointer struct {
	Line   int
	Column int
	Pos    int
}

// PointerEntry locates one JSON value in generated text. Key and KeyEnd are
// set only for object members.
type PointerEntry struct {
	Value    Pointer
	ValueEnd Pointer
	Key      *Pointer
	KeyEnd   *Pointer
}

// PointerTable maps RFC 6901 JSON pointers ("" is the root) to positions.
type PointerTable map[string]PointerEntry

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes one reference token.
func EscapePointerToken(token string) string {
	return pointerEscaper.Replace(token)
}

// JoinPointer appends an unescaped token to a pointer.
func JoinPointer(pointer, token string) string {
	return pointer + "/" + EscapePointerToken(token)
}

// Printed is the output of the pretty-printer: formatted text plus the
// position of every value in it.
type Printed struct {
	Text     string
	Pointers PointerTable
}
