package dom

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/livesync/internal/shared"
	"golang.org/x/net/html"
)

// node is the [Element] handle for an element of a [Tree].
type node struct {
	t *Tree
	n *html.Node
}

func (e *node) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *node) Tag() string { return e.n.Data }

func (e *node) Attr(key string) (string, bool) {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	return getAttr(e.n, key)
}

func (e *node) SetAttr(key, val string) {
	e.t.mutate(func() { setAttr(e.n, key, val) })
}

func (e *node) HasClass(class string) bool {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	return hasClass(e.n, class)
}

func (e *node) Value() string {
	v, _ := e.Attr("value")
	return v
}

func (e *node) SetValue(v string) { e.SetAttr("value", v) }

func (e *node) Text() string {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	return textContent(e.n)
}

func (e *node) SetText(s string) {
	e.t.mutate(func() {
		for c := e.n.FirstChild; c != nil; {
			next := c.NextSibling
			e.n.RemoveChild(c)
			e.t.forget(c)
			c = next
		}
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	})
}

func (e *node) Prepend(fragment string) error {
	var err error
	e.t.mutate(func() {
		var nodes []*html.Node
		nodes, err = html.ParseFragment(strings.NewReader(fragment), e.n)
		if err != nil {
			err = fmt.Errorf("%w: %w", shared.ErrInvalidFragment, err)
			return
		}

		first := e.n.FirstChild
		for _, n := range nodes {
			e.n.InsertBefore(n, first)
		}
	})
	return err
}

func (e *node) Refresh(ctx context.Context) error {
	t := e.t

	t.mu.Lock()
	src, _ := getAttr(e.n, AttrGet)
	sel, _ := getAttr(e.n, AttrSelect)
	mode, _ := getAttr(e.n, AttrSwap)
	loader := t.loader
	t.mu.Unlock()

	if src == "" {
		return nil
	}
	if loader == nil {
		return fmt.Errorf("%w: no loader for %s", shared.ErrFragmentLoad, src)
	}

	body, err := loader.Load(ctx, src)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if !t.attached(e.n) {
		t.mu.Unlock()
		return nil
	}
	roots, err := t.swap(e.n, body, sel, swapMode(mode))
	loaded := make([]Element, 0, len(roots))
	for _, r := range roots {
		loaded = append(loaded, t.wrap(r))
	}
	hooks, change := slices.Clone(t.onLoad), t.onChange
	t.mu.Unlock()

	if err != nil {
		return err
	}
	for _, root := range loaded {
		for _, fn := range hooks {
			fn(root)
		}
	}
	if change != nil {
		change()
	}
	return nil
}

func (e *node) Children() []Element {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()

	kids := elementChildren(e.n)
	out := make([]Element, 0, len(kids))
	for _, k := range kids {
		out = append(out, e.t.wrap(k))
	}
	return out
}

func (e *node) FindAllByClass(class string) []Element {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	return e.t.collect(e.n, func(n *html.Node) bool { return hasClass(n, class) })
}

func (e *node) MoveChild(from, to int) error {
	var err error
	e.t.mutate(func() {
		kids := elementChildren(e.n)
		if from < 0 || from >= len(kids) || to < 0 || to >= len(kids) {
			err = fmt.Errorf("%w: move %d to %d of %d", shared.ErrOutOfRange, from, to, len(kids))
			return
		}
		if from == to {
			return
		}

		moving := kids[from]
		e.n.RemoveChild(moving)
		rest := elementChildren(e.n)
		if to >= len(rest) {
			e.n.AppendChild(moving)
			return
		}
		e.n.InsertBefore(moving, rest[to])
	})
	return err
}

func (e *node) Attached() bool {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	return e.t.attached(e.n)
}

func (e *node) String() string {
	if id := e.ID(); id != "" {
		return e.Tag() + "#" + id
	}
	return e.Tag()
}
