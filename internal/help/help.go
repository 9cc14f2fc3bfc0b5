// Package help renders the embedded key reference shown in the help popup.
package help

import (
	_ "embed"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
)

//go:embed help.md
var source []byte

const keysSuffix = " keys"

// Text returns the help page as plain terminal lines. Key sections written
// for another key mode are left out; an unknown mode falls back to vim.
func Text(keyMode string) string {
	keyMode = strings.ToLower(strings.TrimSpace(keyMode))
	if keyMode != "function" {
		keyMode = "vim"
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(source)

	var lines []string
	include := true
	for _, node := range doc.GetChildren() {
		switch n := node.(type) {
		case *ast.Heading:
			title := inline(n)
			if n.Level == 1 {
				include = sectionFor(title, keyMode)
			}
			if !include {
				continue
			}
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, title, underline(title, n.Level))
		case *ast.Paragraph:
			if include {
				lines = append(lines, inline(n))
			}
		case *ast.List:
			if !include {
				continue
			}
			for _, item := range n.GetChildren() {
				lines = append(lines, "  • "+inline(item))
			}
		case *ast.CodeBlock:
			if !include {
				continue
			}
			for _, l := range strings.Split(strings.TrimRight(string(n.Literal), "\n"), "\n") {
				lines = append(lines, "    "+l)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func sectionFor(title, keyMode string) bool {
	lower := strings.ToLower(title)
	mode, ok := strings.CutSuffix(lower, keysSuffix)
	if !ok {
		return true
	}
	return mode == keyMode
}

func underline(title string, level int) string {
	ch := "-"
	if level == 1 {
		ch = "="
	}
	return strings.Repeat(ch, runewidth.StringWidth(title))
}

// inline joins the text below n into one line. Soft breaks stay inside text
// literals as newlines, so all whitespace runs collapse to a single blank.
func inline(n ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(n, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(t.Literal)
		case *ast.Code:
			b.Write(t.Literal)
		case *ast.Softbreak, *ast.Hardbreak:
			b.WriteByte(' ')
		}
		return ast.GoToNext
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
