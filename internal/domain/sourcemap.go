package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	m "treejson.dev/pkg/treejson/internal/model"
)

// ErrMalformedMappings is returned when a source map's mappings string
// cannot be decoded.
var ErrMalformedMappings = errors.New("malformed mappings")

// originTable records node origins by JSON pointer, keeping the order in
// which pointers were first seen.
type originTable struct {
	order   []string
	origins map[string]*m.Origin
}

func (t *originTable) record(pointer string, origin *m.Origin) {
	if _, ok := t.origins[pointer]; !ok {
		t.order = append(t.order, pointer)
	}
	t.origins[pointer] = origin
}

// CollectMappings correlates every node origin in the settled tree rooted at
// root with the generated position of its JSON pointer. The result is
// sorted by generated position.
func CollectMappings(root m.Node, pointers m.PointerTable) []m.Mapping {
	res := collectMappings(root, pointers)
	sortMappings(res)
	return res
}

// collectMappings returns the mappings in tree walk order.
func collectMappings(root m.Node, pointers m.PointerTable) []m.Mapping {
	table := &originTable{origins: map[string]*m.Origin{}}
	visitOrigins(table, root, "")

	res := make([]m.Mapping, 0, len(table.order))
	for _, pointer := range table.order {
		origin := table.origins[pointer]
		entry, ok := pointers[pointer]
		if !ok {
			continue
		}

		col := origin.Column
		if col <= 0 {
			col = 1
		}

		res = append(res, m.Mapping{
			GeneratedLine:   entry.Value.Line + 1,
			GeneratedColumn: entry.Value.Column + 1,
			Source:          origin.File,
			OriginalLine:    origin.Line,
			OriginalColumn:  col,
		})
	}

	return res
}

func sortMappings(mappings []m.Mapping) {
	sort.SliceStable(mappings, func(i, j int) bool {
		return compareMappings(mappings[i], mappings[j]) < 0
	})
}

// visitOrigins walks the tree in conversion order. Array members are indexed
// by their position in the emitted array; object members by resolved key.
func visitOrigins(table *originTable, node m.Node, pointer string) {
	if node == nil {
		return
	}
	if o := node.Origin(); o != nil {
		table.record(pointer, o)
	}

	switch n := node.(type) {
	case *m.ArrayNode:
		idx := 0
		for _, item := range Flatten(n.Items) {
			if _, ok, err := ToJSON(item); err != nil || !ok {
				continue
			}
			visitOrigins(table, item, m.JoinPointer(pointer, strconv.Itoa(idx)))
			idx++
		}
	case *m.ObjectNode:
		for _, member := range Flatten(n.Properties) {
			prop, ok := member.(*m.PropertyNode)
			if !ok {
				continue
			}
			key, ok := propertyKey(prop)
			if !ok {
				continue
			}
			visitOrigins(table, prop, m.JoinPointer(pointer, key))
		}
	default:
		for _, child := range node.Children() {
			visitOrigins(table, child, pointer)
		}
	}
}

func compareMappings(a, b m.Mapping) int {
	if a.GeneratedLine != b.GeneratedLine {
		return a.GeneratedLine - b.GeneratedLine
	}
	if a.GeneratedColumn != b.GeneratedColumn {
		return a.GeneratedColumn - b.GeneratedColumn
	}
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if a.OriginalLine != b.OriginalLine {
		return a.OriginalLine - b.OriginalLine
	}
	return a.OriginalColumn - b.OriginalColumn
}

// BuildSourceMap produces a version 3 source map for the printed form of the
// tree rooted at root. Sources are listed in first-use order. It returns nil
// when no node carries an origin that reaches the output.
func BuildSourceMap(root m.Node, pointers m.PointerTable) *m.SourceMap {
	mappings := collectMappings(root, pointers)
	if len(mappings) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var sources []string
	for _, mp := range mappings {
		if !seen[mp.Source] {
			seen[mp.Source] = true
			sources = append(sources, mp.Source)
		}
	}

	sortMappings(mappings)

	return &m.SourceMap{
		Version:  m.SourceMapVersion,
		Sources:  sources,
		Names:    []string{},
		Mappings: EncodeMappings(mappings, sources),
	}
}

// EncodeMappings serialises sorted mappings as base64 VLQ segments.
// Identical consecutive mappings are written once.
func EncodeMappings(mappings []m.Mapping, sources []string) string {
	index := make(map[string]int, len(sources))
	for i, s := range sources {
		index[s] = i
	}

	var (
		b        strings.Builder
		prevLine = 1
		prevCol  int
		prevSrc  int
		prevOL   int
		prevOC   int
	)

	for i, mp := range mappings {
		if mp.GeneratedLine != prevLine {
			prevCol = 0
			for prevLine < mp.GeneratedLine {
				b.WriteByte(';')
				prevLine++
			}
		} else if i > 0 {
			if compareMappings(mp, mappings[i-1]) == 0 {
				continue
			}
			b.WriteByte(',')
		}

		src := index[mp.Source]
		writeVLQ(&b, mp.GeneratedColumn-prevCol)
		writeVLQ(&b, src-prevSrc)
		writeVLQ(&b, mp.OriginalLine-1-prevOL)
		writeVLQ(&b, mp.OriginalColumn-prevOC)

		prevCol = mp.GeneratedColumn
		prevSrc = src
		prevOL = mp.OriginalLine - 1
		prevOC = mp.OriginalColumn
	}

	return b.String()
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift    = 5
	vlqBase     = 1 << vlqShift
	vlqMask     = vlqBase - 1
	vlqContinue = vlqBase
)

func writeVLQ(b *strings.Builder, v int) {
	var u int
	if v < 0 {
		u = (-v << 1) | 1
	} else {
		u = v << 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u > 0 {
			digit |= vlqContinue
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}

func readVLQ(s string, pos int) (int, int, error) {
	var (
		result int
		shift  uint
	)
	for {
		if pos >= len(s) {
			return 0, pos, fmt.Errorf("%w: unexpected end of segment", ErrMalformedMappings)
		}
		digit := strings.IndexByte(base64Digits, s[pos])
		if digit < 0 {
			return 0, pos, fmt.Errorf("%w: invalid character %q", ErrMalformedMappings, s[pos])
		}
		pos++
		result += (digit & vlqMask) << shift
		shift += vlqShift
		if digit&vlqContinue == 0 {
			break
		}
	}
	if result&1 == 1 {
		return -(result >> 1), pos, nil
	}
	return result >> 1, pos, nil
}

// DecodeMappings expands a source map's mappings string. Segments without
// source information are skipped.
func DecodeMappings(sm *m.SourceMap) ([]m.Mapping, error) {
	var (
		res                    []m.Mapping
		src, origLine, origCol int
	)

	for lineIdx, line := range strings.Split(sm.Mappings, ";") {
		col := 0
		if line == "" {
			continue
		}
		for _, seg := range strings.Split(line, ",") {
			if seg == "" {
				continue
			}
			fields := make([]int, 0, 5)
			for pos := 0; pos < len(seg); {
				var (
					v   int
					err error
				)
				v, pos, err = readVLQ(seg, pos)
				if err != nil {
					return nil, err
				}
				fields = append(fields, v)
			}

			switch len(fields) {
			case 1, 4, 5:
			default:
				return nil, fmt.Errorf("%w: segment %q has %d fields", ErrMalformedMappings, seg, len(fields))
			}

			col += fields[0]
			if len(fields) == 1 {
				continue
			}
			src += fields[1]
			origLine += fields[2]
			origCol += fields[3]

			if src < 0 || src >= len(sm.Sources) {
				return nil, fmt.Errorf("%w: source index %d out of range", ErrMalformedMappings, src)
			}

			res = append(res, m.Mapping{
				GeneratedLine:   lineIdx + 1,
				GeneratedColumn: col,
				Source:          sm.Sources[src],
				OriginalLine:    origLine + 1,
				OriginalColumn:  origCol,
			})
		}
	}

	sortMappings(res)

	return res, nil
}

// SourceMapConsumer answers position queries against a decoded source map.
type SourceMapConsumer struct {
	mappings []m.Mapping
}

// NewSourceMapConsumer decodes sm.
func NewSourceMapConsumer(sm *m.SourceMap) (*SourceMapConsumer, error) {
	if sm == nil {
		return &SourceMapConsumer{}, nil
	}
	if sm.Version != m.SourceMapVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedMappings, sm.Version)
	}
	mappings, err := DecodeMappings(sm)
	if err != nil {
		return nil, err
	}
	return &SourceMapConsumer{mappings: mappings}, nil
}

// Mappings returns every decoded mapping in generated order.
func (c *SourceMapConsumer) Mappings() []m.Mapping {
	return c.mappings
}

// OriginalPositionFor returns the mapping with the greatest column not past
// column on the given generated line.
func (c *SourceMapConsumer) OriginalPositionFor(line, column int) (m.Mapping, bool) {
	var (
		best  m.Mapping
		found bool
	)
	for _, mp := range c.mappings {
		if mp.GeneratedLine < line {
			continue
		}
		if mp.GeneratedLine > line || mp.GeneratedColumn > column {
			break
		}
		best, found = mp, true
	}
	return best, found
}
