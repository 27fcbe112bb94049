package markup

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
)

// Props are the attributes written on a component tag.
type Props map[string]string

// Get returns the prop or def when it is absent or empty.
func (p Props) Get(key, def string) string {
	if v := p[key]; v != "" {
		return v
	}
	return def
}

// Component renders one embedded element. Children is the rendered markdown
// between the opening and closing tag, empty for self-closing tags.
type Component interface {
	Render(w io.Writer, props Props, children template.HTML) error
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(w io.Writer, props Props, children template.HTML) error

func (f ComponentFunc) Render(w io.Writer, props Props, children template.HTML) error {
	return f(w, props, children)
}

type templateComponent struct {
	t *template.Template
}

func (c templateComponent) Render(w io.Writer, props Props, children template.HTML) error {
	return c.t.Execute(w, struct {
		Props    Props
		Children template.HTML
	}{props, children})
}

var componentFuncs = template.FuncMap{
	"default": func(def, v string) string {
		if v == "" {
			return def
		}
		return v
	},
	"required": func(name, v string) (string, error) {
		if v == "" {
			return "", fmt.Errorf("missing required prop %q", name)
		}
		return v, nil
	},
}

// Components is a registry of the components a post may embed. Components only
// see their props and children, so a post cannot reach anything else.
type Components struct {
	mu sync.RWMutex
	m  map[string]Component
}

func NewComponents() *Components {
	return &Components{m: make(map[string]Component)}
}

func (c *Components) Register(name string, comp Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[name] = comp
}

// RegisterTemplate parses src as an html/template and registers it under name.
// The template sees .Props and .Children and the functions default and required;
// absent props read as "".
func (c *Components) RegisterTemplate(name, src string) error {
	t, err := template.New(name).Option("missingkey=zero").Funcs(componentFuncs).Parse(src)
	if err != nil {
		return fmt.Errorf("parse component %s: %w", name, err)
	}
	c.Register(name, templateComponent{t: t})
	return nil
}

func (c *Components) mustRegisterTemplate(name, src string) {
	if err := c.RegisterTemplate(name, src); err != nil {
		panic(err)
	}
}

// Render runs the named component into a buffer. Unknown names, errors and
// panics all come back as errors and nothing is written.
func (c *Components) Render(name string, props Props, children template.HTML) (out template.HTML, err error) {
	c.mu.RLock()
	comp, ok := c.m[name]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown component %q", name)
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("component panicked: %v", p)
		}
	}()

	var buf bytes.Buffer
	if err := comp.Render(&buf, props, children); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

var errNoSrc = errors.New(`missing required prop "src"`)

// DefaultComponents returns a registry with Callout, YouTube and Figure.
func DefaultComponents() *Components {
	c := NewComponents()
	c.mustRegisterTemplate("Callout",
		`<aside class="callout callout-{{default "info" .Props.type}}" role="note">`+
			`{{with .Props.title}}<p class="callout-title">{{.}}</p>{{end}}{{.Children}}</aside>`)
	c.mustRegisterTemplate("YouTube",
		`{{$id := required "id" .Props.id}}<div class="video-embed">`+
			`<iframe src="https://www.youtube-nocookie.com/embed/{{$id}}" title="{{default "YouTube video" .Props.title}}" `+
			`loading="lazy" allow="accelerometer; encrypted-media; picture-in-picture" allowfullscreen></iframe></div>`)
	c.Register("Figure", ComponentFunc(func(w io.Writer, props Props, children template.HTML) error {
		src := props.Get("src", "")
		if src == "" {
			return errNoSrc
		}
		return figureTemplate.Execute(w, struct {
			Src, Alt, Caption string
		}{src, props.Get("alt", ""), props.Get("caption", "")})
	}))
	return c
}

var figureTemplate = template.Must(template.New("figure").Parse(
	`<figure class="figure"><img src="{{.Src}}" alt="{{.Alt}}" loading="lazy">` +
		`{{with .Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>`))
