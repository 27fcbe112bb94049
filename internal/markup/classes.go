package markup

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ElementClasses is the class attribute given to each kind of element.
// An empty value leaves the element bare.
type ElementClasses struct {
	H1, H2, H3 string
	Paragraph  string
	Unordered  string
	Ordered    string
	ListItem   string
	Blockquote string
	InlineCode string
}

var DefaultClasses = ElementClasses{
	H1:         "text-3xl font-bold text-white mt-8 mb-4",
	H2:         "text-2xl font-semibold text-white mt-6 mb-3",
	H3:         "text-xl font-semibold text-white mt-4 mb-2",
	Paragraph:  "text-white/80 mb-4 leading-relaxed",
	Unordered:  "list-disc list-inside text-white/80 mb-4 space-y-2",
	Ordered:    "list-decimal list-inside text-white/80 mb-4 space-y-2",
	ListItem:   "text-white/80",
	Blockquote: "border-l-4 border-white/20 pl-4 my-4 text-white/70 italic",
	InlineCode: "font-mono text-white/90 bg-white/10 rounded px-1",
}

type classTransformer struct {
	classes ElementClasses
}

func (t *classTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if cls := t.classFor(n); cls != "" {
			n.SetAttributeString("class", []byte(cls))
		}
		return ast.WalkContinue, nil
	})
}

func (t *classTransformer) classFor(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Heading:
		switch v.Level {
		case 1:
			return t.classes.H1
		case 2:
			return t.classes.H2
		case 3:
			return t.classes.H3
		}
	case *ast.Paragraph:
		return t.classes.Paragraph
	case *ast.List:
		if v.IsOrdered() {
			return t.classes.Ordered
		}
		return t.classes.Unordered
	case *ast.ListItem:
		return t.classes.ListItem
	case *ast.Blockquote:
		return t.classes.Blockquote
	case *ast.CodeSpan:
		return t.classes.InlineCode
	}
	return ""
}
