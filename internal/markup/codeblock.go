package markup

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// LineRange is an inclusive, 1-based range of lines.
type LineRange struct {
	From, To int
}

// FenceInfo is the parsed info string of a fenced code block, for example
//
//	go {1,3-4} /needle/ title="main.go" showLineNumbers
type FenceInfo struct {
	Language        string
	Title           string
	Lines           []LineRange
	Words           []string
	ShowLineNumbers bool
}

var (
	titleMeta  = regexp.MustCompile(`title=(?:"([^"]*)"|'([^']*)')`)
	rangesMeta = regexp.MustCompile(`\{([\d,\s-]*)\}`)
	wordsMeta  = regexp.MustCompile(`/((?:[^/\\]|\\.)+)/`)
)

func ParseFenceInfo(info string) FenceInfo {
	var fi FenceInfo
	info = strings.TrimSpace(info)
	if info != "" && info[0] != '{' && info[0] != '/' {
		lang, rest, _ := strings.Cut(info, " ")
		fi.Language = strings.ToLower(lang)
		info = rest
	}

	if m := titleMeta.FindStringSubmatch(info); m != nil {
		fi.Title = m[1] + m[2]
		info = titleMeta.ReplaceAllString(info, "")
	}

	for _, m := range rangesMeta.FindAllStringSubmatch(info, -1) {
		fi.Lines = append(fi.Lines, parseRanges(m[1])...)
	}
	info = rangesMeta.ReplaceAllString(info, "")

	for _, m := range wordsMeta.FindAllStringSubmatch(info, -1) {
		fi.Words = append(fi.Words, strings.ReplaceAll(m[1], `\/`, "/"))
	}
	info = wordsMeta.ReplaceAllString(info, "")

	for _, field := range strings.Fields(info) {
		if field == "showLineNumbers" {
			fi.ShowLineNumbers = true
		}
	}
	return fi
}

func parseRanges(s string) []LineRange {
	var out []LineRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil || a < 1 {
			continue
		}
		b := a
		if isRange {
			b, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil || b < a {
				continue
			}
		}
		out = append(out, LineRange{From: a, To: b})
	}
	return out
}

func (fi FenceInfo) highlighted(line int) bool {
	for _, r := range fi.Lines {
		if line >= r.From && line <= r.To {
			return true
		}
	}
	return false
}

// codeBlockRenderer replaces goldmark's fenced code output with chroma tokens
// split into one span per line.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if err := writeCodeBlock(w, ParseFenceInfo(info), code.String()); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

func writeCodeBlock(w util.BufWriter, fi FenceInfo, code string) error {
	lang := fi.Language
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	if lang == "" {
		lang = "plaintext"
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenise %s code block: %w", lang, err)
	}
	tokenLines := chroma.SplitTokensIntoLines(it.Tokens())
	if n := len(tokenLines); n > 0 && emptyTail(tokenLines[n-1]) {
		tokenLines = tokenLines[:n-1]
	}

	escLang := html.EscapeString(lang)
	_, _ = w.WriteString("<figure data-code-figure>")
	if fi.Title != "" {
		fmt.Fprintf(w, `<figcaption data-code-title data-language="%s">%s</figcaption>`, escLang, html.EscapeString(fi.Title))
	}
	fmt.Fprintf(w, `<pre class="chroma" data-language="%s" tabindex="0"><code class="language-%s" data-language="%s"`, escLang, escLang, escLang)
	if fi.ShowLineNumbers {
		_, _ = w.WriteString(" data-line-numbers")
	}
	_ = w.WriteByte('>')

	for i, tokens := range tokenLines {
		if i > 0 {
			_ = w.WriteByte('\n')
		}
		writeLine(w, fi, i+1, tokens)
	}

	_, _ = w.WriteString("</code></pre></figure>\n")
	return nil
}

// emptyTail reports the zero-width line left behind by a final newline.
func emptyTail(tokens []chroma.Token) bool {
	for _, tok := range tokens {
		if tok.Value != "" {
			return false
		}
	}
	return true
}

func writeLine(w util.BufWriter, fi FenceInfo, number int, tokens []chroma.Token) {
	var text strings.Builder
	for i := range tokens {
		tokens[i].Value = strings.TrimSuffix(tokens[i].Value, "\n")
		text.WriteString(tokens[i].Value)
	}

	if fi.highlighted(number) {
		_, _ = w.WriteString(`<span data-line data-highlighted-line class="highlighted">`)
	} else {
		_, _ = w.WriteString(`<span data-line>`)
	}
	if text.Len() == 0 {
		// keeps empty lines from collapsing
		_ = w.WriteByte(' ')
		_, _ = w.WriteString("</span>")
		return
	}

	marked := markWords(text.String(), fi.Words)
	inMark := false
	offset := 0
	for _, tok := range tokens {
		value := tok.Value
		cls := tokenClass(tok.Type)
		for len(value) > 0 {
			n := 1
			for n < len(value) && marked[offset+n] == marked[offset] {
				n++
			}
			if marked[offset] != inMark {
				if inMark {
					_, _ = w.WriteString("</mark>")
				} else {
					_, _ = w.WriteString(`<mark class="word" data-highlighted-chars>`)
				}
				inMark = marked[offset]
			}
			writeToken(w, cls, value[:n])
			value = value[n:]
			offset += n
		}
	}
	if inMark {
		_, _ = w.WriteString("</mark>")
	}
	_, _ = w.WriteString("</span>")
}

func writeToken(w util.BufWriter, cls, value string) {
	if cls == "" {
		_, _ = w.WriteString(html.EscapeString(value))
		return
	}
	fmt.Fprintf(w, `<span class="%s">%s</span>`, cls, html.EscapeString(value))
}

// markWords flags every byte of line covered by an occurrence of one of words.
func markWords(line string, words []string) []bool {
	marked := make([]bool, len(line))
	for _, word := range words {
		if word == "" {
			continue
		}
		for start := 0; start < len(line); {
			i := strings.Index(line[start:], word)
			if i < 0 {
				break
			}
			from := start + i
			for j := from; j < from+len(word); j++ {
				marked[j] = true
			}
			start = from + len(word)
		}
	}
	return marked
}

func tokenClass(t chroma.TokenType) string {
	for _, tt := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if cls, ok := chroma.StandardTypes[tt]; ok && cls != "" {
			return cls
		}
	}
	return ""
}
