package emitter

import (
	"encoding/json"
	"sort"
	"strings"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SourceMap is a version 3 source map with one segment per mapped line.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// lineIndex converts byte offsets to zero-based line and column.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) locate(offset int) (line, col int) {
	line = sort.Search(len(l), func(i int) bool { return l[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - l[line]
}

// buildSourceMap encodes lines, the source offset each generated line
// starts at (-1 for synthesized lines), against src.
func buildSourceMap(file, source, src string, lines []int) (string, error) {
	idx := newLineIndex(src)
	var b strings.Builder
	prevLine, prevCol := 0, 0
	for i, off := range lines {
		if i > 0 {
			b.WriteByte(';')
		}
		if off < 0 || off > len(src) {
			continue
		}
		line, col := idx.locate(off)
		// generated column, source index (always the single source),
		// source line, source column; the last three relative to the
		// previous segment
		writeVLQ(&b, 0)
		writeVLQ(&b, 0)
		writeVLQ(&b, line-prevLine)
		writeVLQ(&b, col-prevCol)
		prevLine, prevCol = line, col
	}

	m := SourceMap{
		Version:  3,
		File:     file,
		Sources:  []string{source},
		Names:    []string{},
		Mappings: b.String(),
	}
	if src != "" {
		m.SourcesContent = []string{src}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}

// decodeMappings expands a mappings string into the source line of every
// generated line (-1 where unmapped).
func decodeMappings(mappings string) []int {
	groups := strings.Split(mappings, ";")
	out := make([]int, len(groups))
	line := 0
	for i, g := range groups {
		out[i] = -1
		if g == "" {
			continue
		}
		seg := strings.Split(g, ",")[0]
		var fields []int
		for len(seg) > 0 {
			v, n := readVLQ(seg)
			fields = append(fields, v)
			seg = seg[n:]
		}
		if len(fields) >= 3 {
			line += fields[2]
			out[i] = line
		}
	}
	return out
}

func readVLQ(s string) (int, int) {
	u, shift, n := 0, 0, 0
	for n < len(s) {
		digit := strings.IndexByte(base64Digits, s[n])
		n++
		u |= (digit & 31) << shift
		shift += 5
		if digit&32 == 0 {
			break
		}
	}
	if u&1 == 1 {
		return -(u >> 1), n
	}
	return u >> 1, n
}
