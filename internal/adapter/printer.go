// Package adapter contains the I/O adapters used by the treejson domain:
// JSON printing, document loading and filesystem access.
package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	m "treejson.dev/pkg/treejson/internal/model"
)

// Printer pretty prints a converted JSON value and reports where each value
// landed in the output.
type Printer interface {
	Print(value any, indent string) (m.Printed, error)
}

// JSONPrinter formats values the way JSON.stringify does with an indent,
// tracking line, column and byte offset of every value. Columns count
// UTF-16 code units so they line up with source map consumers.
type JSONPrinter struct{}

// NewJSONPrinter returns a JSONPrinter.
func NewJSONPrinter() *JSONPrinter {
	return &JSONPrinter{}
}

// Print implements Printer. An empty indent produces compact output.
func (p *JSONPrinter) Print(value any, indent string) (m.Printed, error) {
	w := &pointerWriter{indent: indent, pointers: m.PointerTable{}}
	if err := w.value(value, 0, ""); err != nil {
		return m.Printed{}, err
	}

	return m.Printed{Text: w.buf.String(), Pointers: w.pointers}, nil
}

type pointerWriter struct {
	buf      strings.Builder
	indent   string
	line     int
	column   int
	pointers m.PointerTable
}

func (w *pointerWriter) here() m.Pointer {
	return m.Pointer{Line: w.line, Column: w.column, Pos: w.buf.Len()}
}

// out writes text that contains no newlines.
func (w *pointerWriter) out(s string) {
	w.buf.WriteString(s)
	for _, r := range s {
		w.column += utf16.RuneLen(r)
	}
}

func (w *pointerWriter) newline(level int) {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	w.line++
	w.column = 0
	for range level {
		w.out(w.indent)
	}
}

func (w *pointerWriter) value(v any, level int, ptr string) error {
	entry := w.pointers[ptr]
	entry.Value = w.here()

	if err := w.write(v, level, ptr); err != nil {
		return err
	}

	entry.ValueEnd = w.here()
	w.pointers[ptr] = entry

	return nil
}

func (w *pointerWriter) write(v any, level int, ptr string) error {
	switch x := v.(type) {
	case nil:
		w.out("null")
	case bool:
		w.out(strconv.FormatBool(x))
	case string:
		return w.quote(x)
	case float64:
		w.out(formatNumber(x))
	case float32:
		w.out(formatNumber(float64(x)))
	case int:
		w.out(strconv.Itoa(x))
	case int64:
		w.out(strconv.FormatInt(x, 10))
	case json.Number:
		w.out(x.String())
	case []any:
		return w.array(x, level, ptr)
	case *m.Map:
		keys := x.Keys()
		return w.object(keys, func(k string) any { v, _ := x.Get(k); return v }, level, ptr)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return w.object(keys, func(k string) any { return x[k] }, level, ptr)
	default:
		return fmt.Errorf("cannot print %T as JSON", v)
	}

	return nil
}

func (w *pointerWriter) array(items []any, level int, ptr string) error {
	if len(items) == 0 {
		w.out("[]")
		return nil
	}

	w.out("[")
	for i, item := range items {
		if i > 0 {
			w.out(",")
		}
		w.newline(level + 1)
		if err := w.value(item, level+1, ptr+"/"+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	w.newline(level)
	w.out("]")

	return nil
}

func (w *pointerWriter) object(keys []string, get func(string) any, level int, ptr string) error {
	if len(keys) == 0 {
		w.out("{}")
		return nil
	}

	w.out("{")
	for i, key := range keys {
		if i > 0 {
			w.out(",")
		}
		w.newline(level + 1)

		child := m.JoinPointer(ptr, key)
		keyStart := w.here()
		if err := w.quote(key); err != nil {
			return err
		}
		keyEnd := w.here()
		w.pointers[child] = m.PointerEntry{Key: &keyStart, KeyEnd: &keyEnd}

		w.out(":")
		if w.indent != "" {
			w.out(" ")
		}
		if err := w.value(get(key), level+1, child); err != nil {
			return err
		}
	}
	w.newline(level)
	w.out("}")

	return nil
}

// quote writes s as a JSON string. U+2028 and U+2029 stay raw, as
// JSON.stringify writes them.
func (w *pointerWriter) quote(s string) error {
	var out strings.Builder
	out.WriteByte('"')

	start := 0
	for i, r := range s {
		if r != '\u2028' && r != '\u2029' {
			continue
		}
		if err := writeEscaped(&out, s[start:i]); err != nil {
			return err
		}
		out.WriteRune(r)
		start = i + utf8.RuneLen(r)
	}
	if err := writeEscaped(&out, s[start:]); err != nil {
		return err
	}

	out.WriteByte('"')
	w.out(out.String())
	return nil
}

// writeEscaped writes the escaped body of s without the surrounding quotes.
func writeEscaped(out *strings.Builder, s string) error {
	if s == "" {
		return nil
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}

	quoted := strings.TrimSuffix(b.String(), "\n")
	out.WriteString(quoted[1 : len(quoted)-1])
	return nil
}

// formatNumber follows the ECMAScript number-to-string rules closely enough
// for JSON output: shortest round-trip digits, exponent outside 1e-6..1e21.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go writes e+21 / e-08; JavaScript drops the exponent's leading zeros.
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + string(sign) + digits
}
