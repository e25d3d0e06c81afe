package parser

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/simonhull/firebird-suite/plume/internal/ast"
)

// sfcBlock is one top level block located by the tokenizer.
type sfcBlock struct {
	name         string
	attrs        []ast.Attribute
	start        int
	contentStart int
	contentEnd   int
}

// parseSFC splits a single-file component into its top level blocks and
// parses each one: template bodies as markup, scripts as script, anything
// else verbatim.
func (s *scanner) parseSFC() error {
	blocks, gaps, err := s.splitBlocks()
	if err != nil {
		return err
	}

	root := s.tree.Root()
	gi := 0
	for _, b := range blocks {
		for gi < len(gaps) && gaps[gi].Pos < b.start {
			s.appendNode(root, gaps[gi])
			gi++
		}
		if err := s.parseBlock(b); err != nil {
			return err
		}
	}
	for ; gi < len(gaps); gi++ {
		s.appendNode(root, gaps[gi])
	}
	return nil
}

func (s *scanner) parseBlock(b sfcBlock) error {
	id := s.appendNode(s.tree.Root(), ast.Node{Kind: ast.KindBlock, Tag: b.name, Attrs: b.attrs, Pos: b.start})

	outer := s.limit
	s.limit = b.contentEnd
	defer func() { s.limit = outer }()

	switch b.name {
	case "template":
		_, err := s.parseChildren(b.contentStart, id, markupTemplate, b.name, -1)
		return err
	case "script":
		saved := s.flags.typescript
		for _, a := range b.attrs {
			if a.Name == "lang" && (a.Value == "ts" || a.Value == "tsx") {
				s.flags.typescript = true
				s.comp.TypeScript = true
			}
		}
		_, err := s.scanScript(b.contentStart, scanMode{parent: id, topLevel: true})
		s.flags.typescript = saved
		return err
	default:
		if b.contentEnd > b.contentStart {
			s.appendNode(id, ast.Node{Kind: ast.KindCode, Text: s.src[b.contentStart:b.contentEnd], Pos: b.contentStart})
		}
		return nil
	}
}

// splitBlocks walks the html tokenizer over the source, tracking byte
// offsets through Raw, and returns the top level blocks plus the text and
// comments between them.
func (s *scanner) splitBlocks() ([]sfcBlock, []ast.Node, error) {
	z := html.NewTokenizer(strings.NewReader(s.src))

	var (
		blocks []sfcBlock
		gaps   []ast.Node
		open   *sfcBlock
		depth  int
		offset int
	)

	for {
		tt := z.Next()
		raw := string(z.Raw())
		pos := offset
		offset += len(raw)

		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, nil, newParseError(s.src, pos, "%v", z.Err())
		}

		if open != nil {
			name, _ := z.TagName()
			switch {
			case tt == html.StartTagToken && string(name) == open.name:
				depth++
			case tt == html.EndTagToken && string(name) == open.name:
				depth--
				if depth == 0 {
					open.contentEnd = pos
					blocks = append(blocks, *open)
					open = nil
				}
			}
			continue
		}

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			open = &sfcBlock{
				name:         tok.Data,
				attrs:        blockAttrs(tok.Attr),
				start:        pos,
				contentStart: offset,
			}
			depth = 1
		case html.SelfClosingTagToken:
			tok := z.Token()
			blocks = append(blocks, sfcBlock{
				name:         tok.Data,
				attrs:        blockAttrs(tok.Attr),
				start:        pos,
				contentStart: offset,
				contentEnd:   offset,
			})
		case html.EndTagToken:
			return nil, nil, newParseError(s.src, pos, "unexpected closing tag %s", strings.TrimSpace(raw))
		default:
			if strings.TrimSpace(raw) != "" && tt == html.TextToken {
				return nil, nil, newParseError(s.src, pos, "unexpected text outside of a block")
			}
			gaps = append(gaps, ast.Node{Kind: ast.KindText, Text: raw, Pos: pos})
		}
	}

	if open != nil {
		return nil, nil, newParseError(s.src, open.start, "unterminated <%s> block", open.name)
	}
	if len(blocks) == 0 {
		return nil, nil, newParseError(s.src, 0, "no component blocks found")
	}
	return blocks, gaps, nil
}

func blockAttrs(in []html.Attribute) []ast.Attribute {
	out := make([]ast.Attribute, 0, len(in))
	for _, a := range in {
		if a.Val == "" {
			out = append(out, ast.Attribute{Name: a.Key, Kind: ast.AttrBoolean})
			continue
		}
		out = append(out, ast.Attribute{Name: a.Key, Kind: ast.AttrStatic, Value: a.Val})
	}
	return out
}
