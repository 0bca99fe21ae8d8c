package page

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/shared"
)

func newMemory() Storage { return repositories.NewMemorySessionStore("test") }

// testingTree wraps a tree with lookups that fail the test when an id is missing.
type testingTree struct{ doc dom.Document }

func (tt *testingTree) value(t *testing.T, id string) string {
	t.Helper()
	return mustFind(t, tt.doc, id).Value()
}

func (tt *testingTree) set(t *testing.T, id, v string) {
	t.Helper()
	mustFind(t, tt.doc, id).SetValue(v)
}

func (tt *testingTree) attr(t *testing.T, id, key string) string {
	t.Helper()
	v, _ := mustFind(t, tt.doc, id).Attr(key)
	return v
}

func TestFragments(t *testing.T) {
	t.Run("Notify refreshes only matching subscribers", func(t *testing.T) {
		loader := newRecordingLoader(map[string]string{
			"/status":   "<p>Playing</p>",
			"/controls": "<button>Pause</button>",
			"/queue":    "<ul></ul>",
		})
		tree := mustTree(t, loader)
		logger, _ := testLogger()

		f := NewFragments(tree, "data-sse", logger)
		f.Notify(context.Background(), models.KindStatus)

		got := loader.requested()
		slices.Sort(got)
		if strings.Join(got, ",") != "/controls,/status" {
			t.Errorf("expected status subscribers refreshed, got %v", got)
		}
		if slices.Contains(got, "/queue") {
			t.Error("tracklist subscriber should not be refreshed")
		}
		if text := mustFind(t, tree, "now-playing").Text(); text != "Playing" {
			t.Errorf("expected refreshed content, got %q", text)
		}
	})

	t.Run("failure does not stop the broadcast", func(t *testing.T) {
		loader := newRecordingLoader(map[string]string{"/controls": "<button>Pause</button>"})
		loader.fail["/status"] = errors.New("boom")
		tree := mustTree(t, loader)
		logger, buf := testLogger()

		NewFragments(tree, "data-sse", logger).Notify(context.Background(), models.KindStatus)

		if len(loader.requested()) != 2 {
			t.Errorf("expected both subscribers attempted, got %v", loader.requested())
		}
		if text := mustFind(t, tree, "controls").Text(); text != "Pause" {
			t.Errorf("expected second subscriber refreshed, got %q", text)
		}
		if !strings.Contains(buf.String(), "fragment refresh failed") {
			t.Errorf("expected warning, got %q", buf.String())
		}
	})

	t.Run("no subscribers", func(t *testing.T) {
		loader := newRecordingLoader(nil)
		tree := mustTree(t, loader)
		logger, buf := testLogger()

		NewFragments(tree, "data-sse", logger).Notify(context.Background(), models.KindVolume)
		if len(loader.requested()) != 0 || buf.Len() != 0 {
			t.Errorf("expected silent no-op, got requests %v log %q", loader.requested(), buf.String())
		}
	})
}

func TestToasts(t *testing.T) {
	t.Run("newest first for every severity", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		toasts := NewToasts(tree, "toast-container", logger)

		toasts.Push(models.SeverityError, `<div class="toast">one</div>`)
		toasts.Push(models.SeverityWarn, `<div class="toast">two</div>`)
		toasts.Push(models.SeveritySuccess, `<div class="toast">three</div>`)
		toasts.Push(models.SeverityInfo, `<div class="toast">four</div>`)

		var got []string
		for _, e := range toasts.Entries() {
			got = append(got, e.Text())
		}
		if strings.Join(got, ",") != "four,three,two,one" {
			t.Errorf("expected four,three,two,one, got %v", got)
		}
	})

	t.Run("missing container", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, buf := testLogger()
		toasts := NewToasts(tree, "nowhere", logger)

		toasts.Push(models.SeverityInfo, "<div>hi</div>")
		if strings.Contains(buf.String(), "WARN") || strings.Contains(buf.String(), "ERRO") {
			t.Errorf("missing container should not be logged as a failure: %q", buf.String())
		}
		if toasts.Entries() != nil {
			t.Error("expected no entries")
		}
	})
}

func TestControls(t *testing.T) {
	ids := ControlIDs{Volume: "volume-slider", Progress: "progress-slider", Position: "position"}

	t.Run("SetVolume", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		c := NewControls(tree, ids, logger)

		c.SetVolume("42")
		if got := mustFind(t, tree, "volume-slider").Value(); got != "42" {
			t.Errorf("expected 42, got %q", got)
		}
		if got := mustFind(t, tree, "progress-slider").Value(); got != "0" {
			t.Errorf("progress should be untouched, got %q", got)
		}
	})

	t.Run("SetVolume is not clamped", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		NewControls(tree, ids, logger).SetVolume("150")
		if got := mustFind(t, tree, "volume-slider").Value(); got != "150" {
			t.Errorf("expected 150, got %q", got)
		}
	})

	t.Run("SetVolume malformed", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, buf := testLogger()
		NewControls(tree, ids, logger).SetVolume("loud")

		if got := mustFind(t, tree, "volume-slider").Value(); got != "50" {
			t.Errorf("expected value unchanged, got %q", got)
		}
		if !strings.Contains(buf.String(), "dropping volume update") {
			t.Errorf("expected warning, got %q", buf.String())
		}
	})

	t.Run("SetPosition", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		NewControls(tree, ids, logger).SetPosition("61000")

		if got := mustFind(t, tree, "progress-slider").Value(); got != "61000" {
			t.Errorf("expected 61000, got %q", got)
		}
		if got := mustFind(t, tree, "position").Text(); got != "01:01" {
			t.Errorf("expected 01:01, got %q", got)
		}
	})

	t.Run("SetPosition non-finite", func(t *testing.T) {
		for _, raw := range []string{"NaN", "Inf", "1e30"} {
			tree := mustTree(t, nil)
			logger, buf := testLogger()
			before := mustFind(t, tree, "position").Text()
			NewControls(tree, ids, logger).SetPosition(raw)

			if got := mustFind(t, tree, "progress-slider").Value(); got != "0" {
				t.Errorf("%s: expected progress unchanged, got %q", raw, got)
			}
			if got := mustFind(t, tree, "position").Text(); got != before {
				t.Errorf("%s: expected display unchanged, got %q", raw, got)
			}
			if !strings.Contains(buf.String(), "dropping position update") {
				t.Errorf("%s: expected warning, got %q", raw, buf.String())
			}
		}
	})

	t.Run("SetPosition without progress control", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		NewControls(tree, ControlIDs{Progress: "nope", Position: "position"}, logger).SetPosition("3600000")

		if got := mustFind(t, tree, "position").Text(); got != "60:00" {
			t.Errorf("expected display updated anyway, got %q", got)
		}
	})

	t.Run("missing targets", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, buf := testLogger()
		c := NewControls(tree, ControlIDs{Volume: "a", Progress: "b", Position: "c"}, logger)

		c.SetVolume("10")
		c.SetPosition("1000")
		if buf.Len() != 0 {
			t.Errorf("missing targets should be silent, got %q", buf.String())
		}
	})
}

type failingStorage struct{}

func (failingStorage) Get(string) (string, bool, error) { return "", false, shared.ErrStorage }
func (failingStorage) Set(string, string) error         { return shared.ErrStorage }

func TestQueryState(t *testing.T) {
	cfg := shared.DefaultConfig().Page
	tabs := map[models.Tab]string{
		models.TabAlbums:    cfg.Tabs.Albums,
		models.TabArtists:   cfg.Tabs.Artists,
		models.TabPlaylists: cfg.Tabs.Playlists,
		models.TabTracks:    cfg.Tabs.Tracks,
	}

	setup := func(t *testing.T, rawURL string, store Storage) (*QueryState, *History, *testingTree) {
		t.Helper()
		tree := mustTree(t, nil)
		history, err := ParseHistory(rawURL)
		if err != nil {
			t.Fatalf("bad url: %v", err)
		}
		q := NewQueryState(QueryStateOpts{
			Document:   tree,
			Storage:    store,
			Location:   history,
			SessionKey: cfg.SessionKey,
			Param:      cfg.QueryParam,
			InputID:    cfg.SearchInputID,
			Tabs:       tabs,
		})
		return q, history, &testingTree{tree}
	}

	t.Run("Set then Load", func(t *testing.T) {
		store := newMemory()
		q, _, _ := setup(t, "http://localhost:9888/", store)
		if err := q.Set("kind of blue"); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		fresh, _, tree := setup(t, "http://localhost:9888/", store)
		v, ok, err := fresh.Load()
		if err != nil || !ok || v != "kind of blue" {
			t.Fatalf("expected stored value, got %q (%v, %v)", v, ok, err)
		}
		if got := tree.value(t, "query"); got != "kind of blue" {
			t.Errorf("expected input value restored, got %q", got)
		}
	})

	t.Run("Load without stored value", func(t *testing.T) {
		q, _, tree := setup(t, "http://localhost:9888/", newMemory())
		tree.set(t, "query", "stale")

		_, ok, err := q.Load()
		if err != nil || ok {
			t.Fatalf("expected absent value, got %v %v", ok, err)
		}
		if got := tree.value(t, "query"); got != "" {
			t.Errorf("expected empty input, got %q", got)
		}
	})

	t.Run("Set writes the URL parameter", func(t *testing.T) {
		q, history, _ := setup(t, "http://localhost:9888/search/albums", newMemory())

		if err := q.Set("jazz"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if got := history.URL().RawQuery; got != "query=jazz" {
			t.Errorf("expected query=jazz, got %q", got)
		}
		if history.Len() != 1 {
			t.Errorf("expected history entry replaced, got %d entries", history.Len())
		}
		if got := history.URL().Path; got != "/search/albums" {
			t.Errorf("path should be unchanged, got %s", got)
		}
	})

	t.Run("blank removes the URL parameter", func(t *testing.T) {
		q, history, _ := setup(t, "http://localhost:9888/?query=jazz&page=2", newMemory())

		for _, blank := range []string{"", "   "} {
			if err := q.Set(blank); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			if got := history.URL().RawQuery; got != "page=2" {
				t.Errorf("expected query removed, got %q", got)
			}
			if history.Len() != 1 {
				t.Errorf("expected history entry replaced, got %d entries", history.Len())
			}
		}
	})

	t.Run("tab links always carry the query", func(t *testing.T) {
		q, _, tree := setup(t, "http://localhost:9888/", newMemory())

		q.Set("a&b")
		if got := tree.attr(t, "albums-tab", "href"); got != "/search/albums?query=a%26b" {
			t.Errorf("unexpected albums href %q", got)
		}

		q.Set("")
		for _, tab := range models.Tabs() {
			want := "/search/" + string(tab) + "?query="
			if got := tree.attr(t, tabs[tab], "href"); got != want {
				t.Errorf("expected %s, got %s", want, got)
			}
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		q, history, _ := setup(t, "http://localhost:9888/", failingStorage{})

		if err := q.Set("jazz"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if history.URL().RawQuery != "" {
			t.Error("URL should not change when storage fails")
		}
		if _, _, err := q.Load(); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestSortables(t *testing.T) {
	t.Run("Bind is idempotent", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()
		s := NewSortables(SortablesOpts{Class: "sortable", Handle: "handle", Logger: logger})

		if n := s.Bind(tree.Root()); n != 1 {
			t.Errorf("expected 1 newly bound, got %d", n)
		}
		if n := s.Bind(tree.Root()); n != 0 {
			t.Errorf("expected rebinding to be a no-op, got %d", n)
		}

		list := mustFind(t, tree, "queue-list")
		if n := s.Bind(list); n != 0 {
			t.Errorf("binding the list itself should be a no-op, got %d", n)
		}
		if n := len(s.Lists()); n != 1 {
			t.Errorf("expected 1 list, got %d", n)
		}
	})

	t.Run("fragment loads bind new lists", func(t *testing.T) {
		loader := newRecordingLoader(map[string]string{
			"/queue": `<ul id="queue-list" class="sortable"><li data-id="z"><span class="handle"></span>Z</li></ul>`,
		})
		tree := mustTree(t, loader)
		logger, _ := testLogger()
		s := NewSortables(SortablesOpts{Class: "sortable", Handle: "handle", Logger: logger})
		tree.OnLoad(func(root dom.Element) { s.Bind(root) })
		s.Bind(tree.Root())

		if err := mustFind(t, tree, "queue").Refresh(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}

		lists := s.Lists()
		if len(lists) != 1 {
			t.Fatalf("expected the replaced list pruned and the new one bound, got %d", len(lists))
		}
		if got := strings.Join(lists[0].Items(), ","); got != "z" {
			t.Errorf("expected z, got %s", got)
		}
		if n := len(lists[0].Handles()); n != 1 {
			t.Errorf("expected 1 handle, got %d", n)
		}
	})

	t.Run("Move reports the new order", func(t *testing.T) {
		tree := mustTree(t, nil)
		logger, _ := testLogger()

		var events []SortEvent
		s := NewSortables(SortablesOpts{
			Class:  "sortable",
			Handle: "handle",
			Logger: logger,
			OnEnd:  func(ctx context.Context, ev SortEvent) { events = append(events, ev) },
		})
		s.Bind(tree.Root())
		list, ok := s.Lookup(mustFind(t, tree, "queue-list"))
		if !ok {
			t.Fatal("expected list to be bound")
		}

		if err := list.Move(context.Background(), 0, 2); err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if err := list.Move(context.Background(), 1, 1); err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if err := list.Move(context.Background(), 5, 0); !errors.Is(err, shared.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}

		if len(events) != 1 {
			t.Fatalf("expected one end event, got %d", len(events))
		}
		if got := strings.Join(events[0].Order, ","); got != "b,c,a" {
			t.Errorf("expected b,c,a, got %s", got)
		}
	})
}
