package dom

import "context"

// Document locates elements.
type Document interface {
	// FindByID returns the element with the given id attribute.
	FindByID(id string) (Element, bool)
	// FindAllByAttribute returns every element whose attribute key equals val, in document order.
	FindAllByAttribute(key, val string) []Element
	// FindAllByClass returns every element carrying class, in document order.
	FindAllByClass(class string) []Element
}

// Element is a handle to a single element of a [Document].
//
// Handles are stable: looking up the same node twice yields the same Element value, so
// Elements can key maps until the document is replaced.
type Element interface {
	ID() string
	Tag() string
	Attr(key string) (string, bool)
	SetAttr(key, val string)
	HasClass(class string) bool

	// Value and SetValue read and write the value attribute of a form control.
	Value() string
	SetValue(v string)

	// Text returns the element's text content; SetText replaces all children with text.
	Text() string
	SetText(s string)

	// Prepend parses fragment as HTML and inserts it before the first child.
	Prepend(fragment string) error

	// Refresh re-fetches the element's fragment and swaps it in.
	Refresh(ctx context.Context) error

	// Children returns the child elements in order.
	Children() []Element
	// FindAllByClass returns the descendants carrying class, in document order.
	FindAllByClass(class string) []Element
	// MoveChild moves the child element at index from to index to.
	MoveChild(from, to int) error

	// Attached reports whether the element is still part of its document.
	Attached() bool
}

// Loader fetches the markup behind a URL path.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, path string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, path string) ([]byte, error) { return f(ctx, path) }

const (
	AttrGet    = "hx-get"
	AttrSelect = "hx-select"
	AttrSwap   = "hx-swap"

	SwapInner = "innerHTML"
	SwapOuter = "outerHTML"
)
