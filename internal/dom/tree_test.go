package dom

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/livesync/internal/shared"
)

const fixture = `<!DOCTYPE html>
<html>
<body>
  <input id="volume-slider" type="range" value="10">
  <span id="position">00:00</span>
  <div id="toast-container"></div>
  <div id="now-playing" data-sse="status" hx-get="/status"><p>idle</p></div>
  <div id="controls" data-sse="status" hx-get="/controls" hx-swap="outerHTML"></div>
  <div id="queue" data-sse="tracklist" hx-get="/queue" hx-select="#queue-list">
    <ul id="queue-list" class="sortable">
      <li id="t1"><span class="handle"></span>One</li>
      <li id="t2"><span class="handle"></span>Two</li>
      <li id="t3"><span class="handle"></span>Three</li>
    </ul>
  </div>
</body>
</html>`

func fragments(pages map[string]string) LoaderFunc {
	return func(ctx context.Context, path string) ([]byte, error) {
		body, ok := pages[path]
		if !ok {
			return nil, shared.ErrFragmentLoad
		}
		return []byte(body), nil
	}
}

func mustParse(t *testing.T, loader Loader) *Tree {
	t.Helper()
	tree, err := Parse(strings.NewReader(fixture), loader)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return tree
}

func ids(elements []Element) []string {
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		out = append(out, e.ID())
	}
	return out
}

func TestTreeLookups(t *testing.T) {
	tree := mustParse(t, nil)

	t.Run("FindByID", func(t *testing.T) {
		el, ok := tree.FindByID("volume-slider")
		if !ok {
			t.Fatal("expected volume slider")
		}
		if el.Tag() != "input" || el.Value() != "10" {
			t.Errorf("unexpected element %s value %q", el.Tag(), el.Value())
		}

		if _, ok := tree.FindByID("missing"); ok {
			t.Error("expected missing id to report false")
		}
		if _, ok := tree.FindByID(""); ok {
			t.Error("expected empty id to report false")
		}
	})

	t.Run("stable handles", func(t *testing.T) {
		a, _ := tree.FindByID("queue")
		b, _ := tree.FindByID("queue")
		if a != b {
			t.Error("expected the same handle for the same node")
		}
	})

	t.Run("FindAllByAttribute", func(t *testing.T) {
		got := strings.Join(ids(tree.FindAllByAttribute("data-sse", "status")), ",")
		if got != "now-playing,controls" {
			t.Errorf("expected now-playing,controls, got %s", got)
		}
		if n := len(tree.FindAllByAttribute("data-sse", "volume")); n != 0 {
			t.Errorf("expected no matches, got %d", n)
		}
	})

	t.Run("FindAllByClass", func(t *testing.T) {
		if got := ids(tree.FindAllByClass("sortable")); len(got) != 1 || got[0] != "queue-list" {
			t.Errorf("expected queue-list, got %v", got)
		}

		list, _ := tree.FindByID("queue-list")
		if n := len(list.FindAllByClass("handle")); n != 3 {
			t.Errorf("expected 3 handles, got %d", n)
		}
	})

	t.Run("Root", func(t *testing.T) {
		if tag := tree.Root().Tag(); tag != "body" {
			t.Errorf("expected body root, got %s", tag)
		}
	})
}

func TestElementMutations(t *testing.T) {
	t.Run("SetValue and SetText", func(t *testing.T) {
		tree := mustParse(t, nil)
		var changes atomic.Int32
		tree.OnChange(func() { changes.Add(1) })

		volume, _ := tree.FindByID("volume-slider")
		volume.SetValue("42")
		if volume.Value() != "42" {
			t.Errorf("expected 42, got %q", volume.Value())
		}

		position, _ := tree.FindByID("position")
		position.SetText("01:01")
		if position.Text() != "01:01" {
			t.Errorf("expected 01:01, got %q", position.Text())
		}

		if changes.Load() != 2 {
			t.Errorf("expected 2 change notifications, got %d", changes.Load())
		}
		if !strings.Contains(tree.String(), `value="42"`) {
			t.Error("rendered document should carry the new value")
		}
	})

	t.Run("Prepend inserts newest first", func(t *testing.T) {
		tree := mustParse(t, nil)
		container, _ := tree.FindByID("toast-container")

		if err := container.Prepend(`<div id="a">first</div>`); err != nil {
			t.Fatalf("prepend failed: %v", err)
		}
		if err := container.Prepend(`<div id="b">second</div>`); err != nil {
			t.Fatalf("prepend failed: %v", err)
		}

		got := strings.Join(ids(container.Children()), ",")
		if got != "b,a" {
			t.Errorf("expected b,a, got %s", got)
		}
	})

	t.Run("MoveChild", func(t *testing.T) {
		tree := mustParse(t, nil)
		list, _ := tree.FindByID("queue-list")

		if err := list.MoveChild(0, 2); err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if got := strings.Join(ids(list.Children()), ","); got != "t2,t3,t1" {
			t.Errorf("expected t2,t3,t1, got %s", got)
		}

		if err := list.MoveChild(2, 0); err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if got := strings.Join(ids(list.Children()), ","); got != "t1,t2,t3" {
			t.Errorf("expected t1,t2,t3, got %s", got)
		}

		if err := list.MoveChild(0, 3); !errors.Is(err, shared.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("Replace detaches old handles", func(t *testing.T) {
		tree := mustParse(t, nil)
		old, _ := tree.FindByID("queue")

		var roots []string
		tree.OnLoad(func(root Element) { roots = append(roots, root.Tag()) })

		if err := tree.Replace([]byte(`<html><body><div id="queue"></div></body></html>`)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if old.Attached() {
			t.Error("expected old handle to be detached")
		}

		fresh, ok := tree.FindByID("queue")
		if !ok || !fresh.Attached() {
			t.Error("expected new queue element")
		}
		if len(roots) != 1 || roots[0] != "body" {
			t.Errorf("expected load hook with body, got %v", roots)
		}
	})
}

func TestRefresh(t *testing.T) {
	loader := fragments(map[string]string{
		"/status":   `<p>Playing</p><p>Kind of Blue</p>`,
		"/controls": `<div id="controls" data-sse="status" hx-get="/controls" hx-swap="outerHTML"><button id="play">Play</button></div>`,
		"/queue": `<main><div id="queue-header">Queue</div><ul id="queue-list" class="sortable">
			<li id="t4"><span class="handle"></span>Four</li>
		</ul></main>`,
	})

	t.Run("innerHTML", func(t *testing.T) {
		tree := mustParse(t, loader)
		var loaded []string
		tree.OnLoad(func(root Element) { loaded = append(loaded, root.ID()) })

		el, _ := tree.FindByID("now-playing")
		if err := el.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}

		if got := el.Text(); got != "PlayingKind of Blue" {
			t.Errorf("unexpected text %q", got)
		}
		if len(loaded) != 1 || loaded[0] != "now-playing" {
			t.Errorf("expected load hook for now-playing, got %v", loaded)
		}
	})

	t.Run("outerHTML", func(t *testing.T) {
		tree := mustParse(t, loader)
		old, _ := tree.FindByID("controls")

		if err := old.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if old.Attached() {
			t.Error("expected replaced element to be detached")
		}
		if _, ok := tree.FindByID("play"); !ok {
			t.Error("expected swapped in content")
		}
		if n := len(tree.FindAllByAttribute("data-sse", "status")); n != 2 {
			t.Errorf("expected two status subscribers after swap, got %d", n)
		}
	})

	t.Run("hx-select", func(t *testing.T) {
		tree := mustParse(t, loader)
		el, _ := tree.FindByID("queue")

		if err := el.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if _, ok := tree.FindByID("queue-header"); ok {
			t.Error("content outside the selection should be dropped")
		}
		list, ok := tree.FindByID("queue-list")
		if !ok {
			t.Fatal("expected selected list")
		}
		if got := strings.Join(ids(list.Children()), ","); got != "t4" {
			t.Errorf("expected t4, got %s", got)
		}
	})

	t.Run("no source is a no-op", func(t *testing.T) {
		tree := mustParse(t, loader)
		el, _ := tree.FindByID("toast-container")
		if err := el.Refresh(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("loader failure", func(t *testing.T) {
		tree := mustParse(t, fragments(nil))
		el, _ := tree.FindByID("now-playing")

		if err := el.Refresh(context.Background()); !errors.Is(err, shared.ErrFragmentLoad) {
			t.Errorf("expected ErrFragmentLoad, got %v", err)
		}
		if got := strings.TrimSpace(el.Text()); got != "idle" {
			t.Errorf("content should be untouched, got %q", got)
		}
	})

	t.Run("missing loader", func(t *testing.T) {
		tree := mustParse(t, nil)
		el, _ := tree.FindByID("now-playing")
		if err := el.Refresh(context.Background()); !errors.Is(err, shared.ErrFragmentLoad) {
			t.Errorf("expected ErrFragmentLoad, got %v", err)
		}
	})
}
