package markup

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindComponent is the node kind of an embedded component block.
var KindComponent = ast.NewNodeKind("Component")

// ComponentNode is a <Name prop="v" /> or <Name prop="v">…</Name> block.
// Inner lines are kept raw and rendered as markdown when the component runs.
type ComponentNode struct {
	ast.BaseBlock
	Name        string
	Props       Props
	SelfClosing bool

	closed bool
	depth  int // open tags of the same name nested inside
}

func (n *ComponentNode) Kind() ast.NodeKind { return KindComponent }

func (n *ComponentNode) IsRaw() bool { return true }

func (n *ComponentNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":        n.Name,
		"SelfClosing": fmt.Sprint(n.SelfClosing),
	}, nil)
}

var (
	openTag   = regexp.MustCompile(`^<([A-Z][A-Za-z0-9]*)((?:\s+[A-Za-z_][\w-]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|\{[^}]*\}))?)*)\s*(/?)>\s*$`)
	attribute = regexp.MustCompile(`([A-Za-z_][\w-]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|\{([^}]*)\}))?`)
)

func parseProps(s string) Props {
	props := Props{}
	for _, m := range attribute.FindAllStringSubmatch(s, -1) {
		switch {
		case strings.Contains(m[0], "="):
			v := m[2] + m[3]
			if m[4] != "" {
				v = strings.Trim(strings.TrimSpace(m[4]), "\"'`")
			}
			props[m[1]] = v
		default:
			props[m[1]] = "true"
		}
	}
	return props
}

type componentParser struct{}

func (p *componentParser) Trigger() []byte {
	return []byte{'<'}
}

func (p *componentParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) {
		return nil, parser.NoChildren
	}
	m := openTag.FindSubmatch(line[pos:])
	if m == nil {
		return nil, parser.NoChildren
	}

	node := &ComponentNode{
		Name:        string(m[1]),
		Props:       parseProps(string(m[2])),
		SelfClosing: len(m[3]) > 0,
	}
	reader.Advance(lineLen(line, segment))
	return node, parser.NoChildren
}

func (p *componentParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*ComponentNode)
	if n.SelfClosing || n.closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	trimmed := bytes.TrimSpace(line)
	if string(trimmed) == "</"+n.Name+">" {
		if n.depth == 0 {
			n.closed = true
			reader.Advance(lineLen(line, segment))
			return parser.Close
		}
		n.depth--
	} else if m := openTag.FindSubmatch(trimmed); m != nil && string(m[1]) == n.Name && len(m[3]) == 0 {
		n.depth++
	}
	n.Lines().Append(segment)
	reader.Advance(lineLen(line, segment))
	return parser.Continue | parser.NoChildren
}

func (p *componentParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *componentParser) CanInterruptParagraph() bool { return true }

func (p *componentParser) CanAcceptIndentedLine() bool { return false }

// lineLen is how far to advance to consume a line but leave its newline.
func lineLen(line []byte, segment text.Segment) int {
	n := segment.Len()
	if len(line) > 0 && line[len(line)-1] == '\n' {
		n--
	}
	return n
}

type componentRenderer struct {
	registry *Components
	convert  func([]byte) (template.HTML, error)
}

func (r *componentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindComponent, r.renderComponent)
}

func (r *componentRenderer) renderComponent(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ComponentNode)
	what := "<" + n.Name + ">"

	var children template.HTML
	if !n.SelfClosing {
		var inner bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			inner.Write(seg.Value(source))
		}
		html, err := r.convert(inner.Bytes())
		if err != nil {
			_, _ = w.WriteString(string(ErrorHTML(what, err)))
			return ast.WalkSkipChildren, nil
		}
		if !n.closed {
			// the rest of the document was swallowed; keep it after the error
			_, _ = w.WriteString(string(ErrorHTML(what, fmt.Errorf("missing closing tag </%s>", n.Name))))
			_, _ = w.WriteString(string(html))
			return ast.WalkSkipChildren, nil
		}
		children = html
	}

	out, err := r.registry.Render(n.Name, n.Props, children)
	if err != nil {
		_, _ = w.WriteString(string(ErrorHTML(what, err)))
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(string(out))
	return ast.WalkSkipChildren, nil
}

type componentExtension struct {
	registry *Components
	convert  func([]byte) (template.HTML, error)
}

func (e *componentExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		// ahead of the HTML block parser (900)
		util.Prioritized(&componentParser{}, 850),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&componentRenderer{registry: e.registry, convert: e.convert}, 200),
	))
}
