// Package pdfgen renders an assembled markdown report body into the final
// PDF artifact. goldmark parses the markdown; the fpdf renderer below walks
// the AST and lays out text, with H1/H2 headings mirrored into the PDF
// outline as a two-level table of contents.
package pdfgen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Document is the report to render: title metadata plus a markdown body.
type Document struct {
	Title string
	Body  string
}

const (
	bodyFont     = "Helvetica"
	monoFont     = "Courier"
	bodySize     = 11.0
	lineHeight   = 5.0
	blockSpacing = 3.0
)

// Generate renders the document into dir under a fresh unique name
// (data-analysis-{uuid}.pdf) and returns the written path. Rendering failures
// are fatal to the run; there is no recovery path.
func Generate(doc Document, dir string) (string, error) {
	name := fmt.Sprintf("data-analysis-%s.pdf", uuid.New())
	path := filepath.Join(dir, name)
	if err := render(doc, path); err != nil {
		return "", err
	}
	return path, nil
}

func render(doc Document, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	r := &renderer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		src: []byte(doc.Body),
	}
	root := goldmark.New().Parser().Parse(gmtext.NewReader(r.src))
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	src []byte
}

func (r *renderer) block(n ast.Node) {
	switch v := n.(type) {
	case *ast.Heading:
		r.heading(v)
	case *ast.Paragraph:
		r.inline(v, "")
		r.endBlock()
	case *ast.TextBlock:
		r.inline(v, "")
		r.endBlock()
	case *ast.ThematicBreak:
		r.rule()
	case *ast.List:
		r.list(v, 0)
		r.pdf.Ln(blockSpacing)
	case *ast.FencedCodeBlock:
		r.codeLines(v.Lines())
	case *ast.CodeBlock:
		r.codeLines(v.Lines())
	case *ast.Blockquote:
		r.blockquote(v)
	case *ast.HTMLBlock:
		r.htmlBlock(v)
	default:
		if n.FirstChild() != nil {
			r.inline(n, "")
			r.endBlock()
		}
	}
}

func (r *renderer) endBlock() {
	r.pdf.Ln(lineHeight)
	r.pdf.Ln(blockSpacing)
}

func (r *renderer) heading(h *ast.Heading) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13}
	size, ok := sizes[h.Level]
	if !ok {
		size = 12
	}
	text := r.plainText(h)
	r.pdf.SetFont(bodyFont, "B", size)
	r.pdf.MultiCell(0, size*0.45, r.tr(text), "", "L", false)
	if h.Level <= 2 {
		r.pdf.Bookmark(r.tr(text), h.Level-1, -1)
	}
	r.pdf.Ln(blockSpacing)
}

func (r *renderer) rule() {
	left, _, right, _ := r.pdf.GetMargins()
	pageW, _ := r.pdf.GetPageSize()
	y := r.pdf.GetY() + 2
	r.pdf.SetDrawColor(130, 130, 130)
	r.pdf.Line(left, y, pageW-right, y)
	r.pdf.Ln(6)
}

func (r *renderer) list(l *ast.List, depth int) {
	left, _, _, _ := r.pdf.GetMargins()
	indent := left + float64(depth)*6
	i := 0
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		i++
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", i)
		}
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				r.pdf.Ln(lineHeight)
				r.list(sub, depth+1)
				first = false
				continue
			}
			r.pdf.SetLeftMargin(indent)
			r.pdf.SetX(indent)
			r.pdf.SetFont(bodyFont, "", bodySize)
			if first {
				r.pdf.Write(lineHeight, r.tr(marker))
				first = false
			} else {
				r.pdf.Write(lineHeight, "  ")
			}
			r.inline(c, "")
			r.pdf.Ln(lineHeight)
			r.pdf.SetLeftMargin(left)
		}
	}
	r.pdf.SetLeftMargin(left)
}

func (r *renderer) codeLines(lines *gmtext.Segments) {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.src))
	}
	r.pdf.SetFont(monoFont, "", 9)
	r.pdf.MultiCell(0, 4.5, r.tr(b.String()), "", "L", false)
	r.pdf.Ln(blockSpacing)
}

func (r *renderer) blockquote(q *ast.Blockquote) {
	left, _, _, _ := r.pdf.GetMargins()
	r.pdf.SetLeftMargin(left + 5)
	r.pdf.SetX(left + 5)
	for c := q.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c)
	}
	r.pdf.SetLeftMargin(left)
}

var divRe = regexp.MustCompile(`(?s)<div[^>]*style="([^"]*)"[^>]*>(.*?)</div>`)
var tagRe = regexp.MustCompile(`<[^>]+>`)

// htmlBlock handles the HTML-flavored report header: styled divs with
// right-aligned or italic text. Anything else has its tags stripped and is
// rendered as a plain paragraph.
func (r *renderer) htmlBlock(h *ast.HTMLBlock) {
	var b strings.Builder
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.src))
	}
	raw := b.String()

	rest := raw
	for _, m := range divRe.FindAllStringSubmatch(raw, -1) {
		style, inner := m[1], m[2]
		align := "L"
		fontStyle := ""
		if strings.Contains(style, "text-align: right") {
			align = "R"
		}
		if strings.Contains(style, "font-style: italic") {
			fontStyle = "I"
		}
		text := strings.TrimSpace(tagRe.ReplaceAllString(inner, " "))
		if text != "" {
			r.pdf.SetFont(bodyFont, fontStyle, bodySize)
			r.pdf.CellFormat(0, lineHeight, r.tr(text), "", 1, align, false, 0, "")
		}
		rest = strings.Replace(rest, m[0], "", 1)
	}
	if text := strings.TrimSpace(tagRe.ReplaceAllString(rest, " ")); text != "" {
		r.pdf.SetFont(bodyFont, "", bodySize)
		r.pdf.MultiCell(0, lineHeight, r.tr(text), "", "L", false)
	}
	r.pdf.Ln(blockSpacing)
}

// inline renders a block node's inline children, tracking bold/italic state.
func (r *renderer) inline(n ast.Node, style string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			r.write(style, string(v.Segment.Value(r.src)))
			if v.SoftLineBreak() || v.HardLineBreak() {
				r.write(style, " ")
			}
		case *ast.String:
			r.write(style, string(v.Value))
		case *ast.Emphasis:
			s := style + "I"
			if v.Level >= 2 {
				s = style + "B"
			}
			r.inline(v, s)
		case *ast.CodeSpan:
			r.pdf.SetFont(monoFont, "", bodySize-1)
			r.pdf.Write(lineHeight, r.tr(r.plainText(v)))
		case *ast.Link:
			r.inline(v, style)
		case *ast.AutoLink:
			r.write(style, string(v.URL(r.src)))
		case *ast.RawHTML:
			// inline tags carry no layout here
		default:
			if c.FirstChild() != nil {
				r.inline(c, style)
			}
		}
	}
}

func (r *renderer) write(style, s string) {
	if s == "" {
		return
	}
	r.pdf.SetFont(bodyFont, normalizeStyle(style), bodySize)
	r.pdf.Write(lineHeight, r.tr(s))
}

// plainText flattens a node's inline content to a plain string.
func (r *renderer) plainText(n ast.Node) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				b.Write(v.Segment.Value(r.src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(v.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// normalizeStyle collapses accumulated style letters to one of
// "", "B", "I", "BI".
func normalizeStyle(style string) string {
	out := ""
	if strings.Contains(style, "B") {
		out += "B"
	}
	if strings.Contains(style, "I") {
		out += "I"
	}
	return out
}
