package dom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/livesync/internal/shared"
	"golang.org/x/net/html"
)

// Tree is an HTML document implementing [Document].
//
// All reads and writes hold the tree's mutex. Network I/O done by [Element.Refresh] happens
// outside it, and load hooks and the change hook run after it is released.
type Tree struct {
	mu       sync.Mutex
	doc      *html.Node
	nodes    map[*html.Node]*node
	loader   Loader
	onLoad   []func(root Element)
	onChange func()
}

// NewTree creates a tree holding an empty document. loader resolves hx-get sources and may be nil.
func NewTree(loader Loader) *Tree {
	doc, _ := html.Parse(strings.NewReader(""))
	return &Tree{doc: doc, nodes: make(map[*html.Node]*node), loader: loader}
}

// Parse creates a tree from the document read from r.
func Parse(r io.Reader, loader Loader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidFragment, err)
	}
	return &Tree{doc: doc, nodes: make(map[*html.Node]*node), loader: loader}, nil
}

// Replace swaps in a whole new document, then runs load hooks against its body.
//
// Elements obtained before the call report [Element.Attached] false afterwards.
func (t *Tree) Replace(data []byte) error {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFragment, err)
	}

	t.mu.Lock()
	t.doc = doc
	t.nodes = make(map[*html.Node]*node)
	root := t.wrap(rootNode(doc))
	hooks, change := slices.Clone(t.onLoad), t.onChange
	t.mu.Unlock()

	for _, fn := range hooks {
		fn(root)
	}
	if change != nil {
		change()
	}
	return nil
}

// OnLoad registers fn to run with the root of every newly loaded document or fragment.
func (t *Tree) OnLoad(fn func(root Element)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLoad = append(t.onLoad, fn)
}

// OnChange sets the hook run after every mutation.
func (t *Tree) OnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Root returns the document body, or the document element when there is no body.
func (t *Tree) Root() Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wrap(rootNode(t.doc))
}

// Render writes the document as HTML.
func (t *Tree) Render(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return html.Render(w, t.doc)
}

func (t *Tree) String() string {
	var buf bytes.Buffer
	if err := t.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (t *Tree) FindByID(id string) (Element, bool) {
	if id == "" {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var found *html.Node
	walk(t.doc, func(n *html.Node) bool {
		if v, ok := getAttr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return t.wrap(found), true
}

func (t *Tree) FindAllByAttribute(key, val string) []Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.collect(t.doc, func(n *html.Node) bool {
		v, ok := getAttr(n, key)
		return ok && v == val
	})
}

func (t *Tree) FindAllByClass(class string) []Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.collect(t.doc, func(n *html.Node) bool { return hasClass(n, class) })
}

// collect walks below from (excluding it) and wraps every element matching keep.
func (t *Tree) collect(from *html.Node, keep func(*html.Node) bool) []Element {
	var out []Element
	for c := from.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) bool {
			if keep(n) {
				out = append(out, t.wrap(n))
			}
			return true
		})
	}
	return out
}

// wrap returns the cached handle for n. Callers hold t.mu.
func (t *Tree) wrap(n *html.Node) *node {
	if e, ok := t.nodes[n]; ok {
		return e
	}
	e := &node{t: t, n: n}
	t.nodes[n] = e
	return e
}

// forget drops cached handles for the subtree at n. Callers hold t.mu.
func (t *Tree) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(t.nodes, c)
		return true
	})
}

func (t *Tree) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == t.doc {
			return true
		}
	}
	return false
}

// mutate runs fn under the lock, then the change hook.
func (t *Tree) mutate(fn func()) {
	t.mu.Lock()
	fn()
	change := t.onChange
	t.mu.Unlock()

	if change != nil {
		change()
	}
}

// swap parses body in the context of target and swaps it in according to mode.
// It returns the roots of the loaded content. Callers hold t.mu.
func (t *Tree) swap(target *html.Node, body []byte, sel, mode string) ([]*html.Node, error) {
	ctxNode := target
	if mode == SwapOuter {
		if target.Parent == nil {
			return nil, fmt.Errorf("%w: refresh target is detached", shared.ErrNoSuchElement)
		}
		if target.Parent.Type == html.ElementNode {
			ctxNode = target.Parent
		}
	}

	nodes, err := html.ParseFragment(bytes.NewReader(body), ctxNode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidFragment, err)
	}

	if sel != "" {
		picked, ok := selectNode(nodes, sel)
		if !ok {
			return nil, fmt.Errorf("%w: %s matched nothing", shared.ErrInvalidFragment, sel)
		}
		if picked.Parent != nil {
			picked.Parent.RemoveChild(picked)
		}
		nodes = []*html.Node{picked}
	}

	if mode == SwapOuter {
		parent := target.Parent
		var loaded []*html.Node
		for _, n := range nodes {
			parent.InsertBefore(n, target)
			if n.Type == html.ElementNode {
				loaded = append(loaded, n)
			}
		}
		parent.RemoveChild(target)
		t.forget(target)
		return loaded, nil
	}

	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		t.forget(c)
		c = next
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
	return []*html.Node{target}, nil
}

func swapMode(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) > 0 && fields[0] == SwapOuter {
		return SwapOuter
	}
	return SwapInner
}

// selectNode finds the first node matching a "#id", ".class" or tag selector.
func selectNode(nodes []*html.Node, sel string) (*html.Node, bool) {
	match := func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == sel }
	switch {
	case strings.HasPrefix(sel, "#"):
		match = func(n *html.Node) bool {
			v, ok := getAttr(n, "id")
			return ok && v == sel[1:]
		}
	case strings.HasPrefix(sel, "."):
		match = func(n *html.Node) bool { return hasClass(n, sel[1:]) }
	}

	var found *html.Node
	for _, root := range nodes {
		walk(root, func(n *html.Node) bool {
			if match(n) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func rootNode(doc *html.Node) *html.Node {
	var htmlEl, body *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "html":
			htmlEl = n
		case "body":
			body = n
			return false
		}
		return true
	})
	switch {
	case body != nil:
		return body
	case htmlEl != nil:
		return htmlEl
	default:
		return doc
	}
}

// walk visits n and its descendants in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	v, ok := getAttr(n, "class")
	return ok && slices.Contains(strings.Fields(v), class)
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
