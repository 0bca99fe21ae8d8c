package ui

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/page"
	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/desertthunder/livesync/internal/stream"
)

const playerPage = `<!DOCTYPE html>
<html>
<body>
  <input id="query" name="query" value="">
  <nav>
    <a id="albums-tab" href="/search/albums?query=">Albums</a>
    <a id="tracks-tab" href="/search/tracks?query=">Tracks</a>
  </nav>
  <input id="volume-slider" type="range" value="50">
  <input id="progress-slider" type="range" value="1000" max="4000">
  <span id="position">00:01</span>
  <div id="toast-container">
    <div class="toast error">Playback failed</div>
    <div class="toast">Queued</div>
  </div>
  <div id="now-playing" data-sse="status" hx-get="/status">Song A   by Artist</div>
  <div id="queue" data-sse="tracklist" hx-get="/queue">
    <ul id="queue-list" class="sortable" hx-post="/queue/reorder">
      <li data-id="a"><span class="handle"></span>A</li>
      <li data-id="b"><span class="handle"></span>B</li>
      <li data-id="c"><span class="handle"></span>C</li>
    </ul>
  </div>
</body>
</html>`

type fakePlayer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *fakePlayer) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return p.err
}

func (p *fakePlayer) Play(context.Context) error     { return p.record("play") }
func (p *fakePlayer) Pause(context.Context) error    { return p.record("pause") }
func (p *fakePlayer) Next(context.Context) error     { return p.record("next") }
func (p *fakePlayer) Previous(context.Context) error { return p.record("previous") }

func (p *fakePlayer) SetVolume(_ context.Context, v int) error {
	return p.record("volume=" + strconv.Itoa(v))
}

func (p *fakePlayer) SetPosition(_ context.Context, ms int64) error {
	return p.record("position=" + strconv.FormatInt(ms, 10))
}

func (p *fakePlayer) SkipTo(_ context.Context, index int) error {
	return p.record("skip=" + strconv.Itoa(index))
}

func (p *fakePlayer) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

type fakeStream struct {
	mu        sync.Mutex
	connects  int
	teardowns int
}

func (s *fakeStream) Connect(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
}

func (s *fakeStream) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns++
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []stream.Visibility
}

func (o *fakeObserver) Observe(_ context.Context, v stream.Visibility) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, v)
	return v == stream.Visible
}

type fakePoster struct {
	mu   sync.Mutex
	path string
	form url.Values
}

func (p *fakePoster) Post(_ context.Context, path string, form url.Values) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
	p.form = form
	return nil
}

type fixture struct {
	model    *Model
	player   *fakePlayer
	stream   *fakeStream
	observer *fakeObserver
	poster   *fakePoster
	store    *repositories.MemorySessionStore
}

func newFixture(t *testing.T, loadErr error) *fixture {
	t.Helper()
	cfg := shared.DefaultConfig().Page
	f := &fixture{
		player:   &fakePlayer{},
		stream:   &fakeStream{},
		observer: &fakeObserver{},
		poster:   &fakePoster{},
		store:    repositories.NewMemorySessionStore("test"),
	}
	loader := dom.LoaderFunc(func(ctx context.Context, path string) ([]byte, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return []byte(playerPage), nil
	})
	p := page.New(page.Opts{
		Config:  cfg,
		Path:    "/",
		Loader:  loader,
		Poster:  f.poster,
		Storage: f.store,
	})
	f.model = NewModel(context.Background(), ModelOpts{
		Page:       p,
		Config:     cfg,
		Player:     f.player,
		Stream:     f.stream,
		Visibility: f.observer,
	})
	return f
}

// step feeds msg to the model, runs the returned command and feeds its result back.
func step(m *Model, msg tea.Msg) tea.Msg {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	out := cmd()
	if _, ok := out.(Msg); ok {
		m.Update(out)
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("Init", func(t *testing.T) {
		t.Run("loads the page and connects the stream", func(t *testing.T) {
			f := newFixture(t, nil)
			m := f.model
			m.Update(m.Init()())

			if !m.loaded {
				t.Fatal("expected page to be loaded")
			}
			if f.stream.connects != 1 {
				t.Errorf("expected 1 connect, got %d", f.stream.connects)
			}
			if m.snap.status != "Song A by Artist" {
				t.Errorf("unexpected status %q", m.snap.status)
			}
			if m.snap.volume != "50" {
				t.Errorf("unexpected volume %q", m.snap.volume)
			}
			if m.snap.positionMS != 1000 || m.snap.percent != 0.25 {
				t.Errorf("unexpected position %d (%v)", m.snap.positionMS, m.snap.percent)
			}
			if len(m.snap.queue) != 3 {
				t.Fatalf("expected 3 queue items, got %d", len(m.snap.queue))
			}
			if item := m.snap.queue[0].(queueItem); item.key != "a" || item.title != "A" {
				t.Errorf("unexpected first item %+v", item)
			}
			if len(m.snap.toasts) != 2 || m.snap.toasts[0].sev != models.SeverityError {
				t.Errorf("unexpected toasts %+v", m.snap.toasts)
			}

			view := m.View()
			for _, want := range []string{"Song A by Artist", "00:01", "50%", "Playback failed"} {
				if !strings.Contains(view, want) {
					t.Errorf("expected view to contain %q", want)
				}
			}
		})

		t.Run("shows load errors and does not connect", func(t *testing.T) {
			f := newFixture(t, shared.ErrServiceUnavailable)
			m := f.model
			m.Update(m.Init()())

			if m.loaded {
				t.Error("expected page not to be loaded")
			}
			if f.stream.connects != 0 {
				t.Errorf("expected no connect, got %d", f.stream.connects)
			}
			if !strings.Contains(m.View(), "Error:") {
				t.Errorf("expected error view, got %q", m.View())
			}
		})

		t.Run("ignores player keys until loaded", func(t *testing.T) {
			f := newFixture(t, nil)
			if _, cmd := f.model.Update(runes("p")); cmd != nil {
				t.Error("expected no command before load")
			}
		})
	})

	t.Run("player keys", func(t *testing.T) {
		tests := []struct {
			name string
			key  tea.KeyMsg
			want string
		}{
			{"play", runes("p"), "play"},
			{"pause", runes("s"), "pause"},
			{"next", runes("n"), "next"},
			{"previous", runes("b"), "previous"},
			{"volume up", runes("+"), "volume=55"},
			{"volume down", runes("-"), "volume=45"},
			{"seek forward", tea.KeyMsg{Type: tea.KeyRight}, "position=6000"},
			{"seek back clamps at zero", tea.KeyMsg{Type: tea.KeyLeft}, "position=0"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, nil)
				f.model.Update(f.model.Init()())

				step(f.model, tt.key)
				if got := f.player.last(); got != tt.want {
					t.Errorf("expected %q, got %q", tt.want, got)
				}
				if f.model.notice == "" {
					t.Error("expected a notice after the command")
				}
			})
		}

		t.Run("failed command is shown", func(t *testing.T) {
			f := newFixture(t, nil)
			f.player.err = shared.ErrAPIRequest
			f.model.Update(f.model.Init()())

			step(f.model, runes("p"))
			if !errors.Is(f.model.err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", f.model.err)
			}
			if !strings.Contains(f.model.View(), "Error: play") {
				t.Error("expected error in view")
			}
		})
	})

	t.Run("reorders the queue and persists the order", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model
		m.Update(m.Init()())

		step(m, runes("J"))
		m.Update(pageChangedMsg())

		if f.poster.path != "/queue/reorder" {
			t.Errorf("unexpected post path %q", f.poster.path)
		}
		if got := strings.Join(f.poster.form["order"], ","); got != "b,a,c" {
			t.Errorf("unexpected posted order %q", got)
		}
		if got := m.snap.queue[1].(queueItem).key; got != "a" {
			t.Errorf("expected a at index 1, got %q", got)
		}
		if m.queue.Index() != 1 {
			t.Errorf("expected cursor to follow the item, got %d", m.queue.Index())
		}

		t.Run("does not move past the top", func(t *testing.T) {
			m.queue.Select(0)
			if _, cmd := m.Update(runes("K")); cmd != nil {
				t.Error("expected no command")
			}
		})
	})

	t.Run("enter skips to the selected queue entry", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model
		m.Update(m.Init()())

		m.queue.Select(2)
		step(m, tea.KeyMsg{Type: tea.KeyEnter})
		if got := f.player.last(); got != "skip=2" {
			t.Errorf("expected skip=2, got %q", got)
		}
	})

	t.Run("search sets the query", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model
		m.Update(m.Init()())

		m.Update(runes("/"))
		if !m.search.Focused() {
			t.Fatal("expected search input to be focused")
		}
		m.Update(runes("daft punk"))
		step(m, tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(pageChangedMsg())

		if m.search.Focused() {
			t.Error("expected search input to be blurred")
		}
		if v, ok, _ := f.store.Get("query"); !ok || v != "daft punk" {
			t.Errorf("expected stored query, got %q (%v)", v, ok)
		}
		if m.snap.query != "daft punk" {
			t.Errorf("expected snapshot query, got %q", m.snap.query)
		}
	})

	t.Run("escape cancels the search", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model
		m.Update(m.Init()())

		m.Update(runes("/"))
		m.Update(runes("abc"))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.search.Value() != "" {
			t.Errorf("expected input reset, got %q", m.search.Value())
		}
		if _, ok, _ := f.store.Get("query"); ok {
			t.Error("expected nothing stored")
		}
	})

	t.Run("focus changes are forwarded", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model

		step(m, tea.BlurMsg{})
		step(m, tea.FocusMsg{})

		if len(f.observer.seen) != 2 || f.observer.seen[0] != stream.Hidden || f.observer.seen[1] != stream.Visible {
			t.Errorf("unexpected observations %v", f.observer.seen)
		}
		if m.notice != "resynchronized" {
			t.Errorf("expected resync notice, got %q", m.notice)
		}
	})

	t.Run("resync reloads the page", func(t *testing.T) {
		f := newFixture(t, nil)
		m := f.model
		m.Update(m.Init()())

		step(m, runes("r"))
		if f.stream.connects != 2 {
			t.Errorf("expected 2 connects, got %d", f.stream.connects)
		}
	})

	t.Run("quit", func(t *testing.T) {
		f := newFixture(t, nil)
		_, cmd := f.model.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestToastSeverity(t *testing.T) {
	tree, err := dom.Parse(strings.NewReader(`<div>
		<p id="a" data-severity="warn">x</p>
		<p id="b" class="toast success">x</p>
		<p id="c">x</p>
		<p id="d" data-severity="nonsense" class="error">x</p>
	</div>`), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   string
		want models.Severity
	}{
		{"a", models.SeverityWarn},
		{"b", models.SeveritySuccess},
		{"c", models.SeverityInfo},
		{"d", models.SeverityError},
	}
	for _, tt := range tests {
		el, ok := tree.FindByID(tt.id)
		if !ok {
			t.Fatalf("missing %s", tt.id)
		}
		if got := toastSeverity(el); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.id, tt.want, got)
		}
	}
}
