package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/formatter"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/page"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/desertthunder/livesync/internal/stream"
)

const (
	volumeStep = 5
	seekStep   = 5000 // ms
	maxToasts  = 3
)

// Player sends playback commands to the server. It is required.
type Player interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, volume int) error
	SetPosition(ctx context.Context, ms int64) error
	SkipTo(ctx context.Context, index int) error
}

// Stream is the live event connection kept open while the page is shown.
type Stream interface {
	Connect(ctx context.Context)
	Teardown()
}

// Observer is told whenever the terminal gains or loses focus.
type Observer interface {
	Observe(ctx context.Context, v stream.Visibility) bool
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Page       *page.Page
	Config     shared.PageConfig
	Player     Player
	Stream     Stream
	Visibility Observer
	Title      string
	Logger     *log.Logger
}

// toast is one rendered notification.
type toast struct {
	sev  models.Severity
	text string
}

// snapshot is what the view shows of the page at one point in time.
type snapshot struct {
	status     string
	volume     string
	position   string
	positionMS int64
	seekable   bool
	percent    float64
	queue      []list.Item
	toasts     []toast
	query      string
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	page       *page.Page
	cfg        shared.PageConfig
	player     Player
	stream     Stream
	visibility Observer
	logger     *log.Logger
	title      string
	width      int
	height     int
	loaded     bool
	snap       snapshot
	queue      list.Model
	search     textinput.Model
	bar        progress.Model
	notice     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	title := opts.Title
	if title == "" {
		title = "livesync"
	}

	queue := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	queue.Title = "Queue"
	queue.SetShowHelp(false)
	queue.SetFilteringEnabled(false)
	queue.SetShowStatusBar(false)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	return &Model{
		ctx:        ctx,
		page:       opts.Page,
		cfg:        opts.Config,
		player:     opts.Player,
		stream:     opts.Stream,
		visibility: opts.Visibility,
		logger:     shared.WithLogger(logger, "component", "ui"),
		title:      title,
		queue:      queue,
		search:     search,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Run starts the program and blocks until it exits. Page changes are forwarded to the program
// while it runs, and the stream is torn down when it stops.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithReportFocus())

	m.page.Tree.OnChange(func() { p.Send(pageChangedMsg()) })
	defer m.page.Tree.OnChange(nil)
	if m.stream != nil {
		defer m.stream.Teardown()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// Init loads the page and opens the event stream.
func (m *Model) Init() tea.Cmd {
	return m.load(m.page.Load)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(10, msg.Width-24)
		m.queue.SetSize(msg.Width-4, max(3, msg.Height-14))
		return m, nil

	case tea.FocusMsg:
		return m, m.observe(stream.Visible)

	case tea.BlurMsg:
		return m, m.observe(stream.Hidden)

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

// View renders the page snapshot, the queue and the notification stack.
func (m *Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
		}
		return styles.help.Render("Loading page...")
	}

	parts := []string{
		styles.title.Render(m.title),
		m.renderStatus(),
		m.renderTransport(),
		m.search.View(),
		m.queue.View(),
	}
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	if m.err != nil {
		parts = append(parts, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.notice != "" {
		parts = append(parts, styles.help.Render(m.notice))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPageLoaded:
		if err, _ := msg.data.(error); err != nil {
			m.err = err
			return m, nil
		}
		m.loaded = true
		m.err = nil
		m.refresh()
	case MsgPageChanged:
		if m.loaded {
			m.refresh()
		}
	case MsgCommandDone:
		res := msg.data.(struct {
			name string
			err  error
		})
		if res.err != nil {
			m.logger.Warn("command failed", "command", res.name, "err", res.err)
			m.err = fmt.Errorf("%s: %w", res.name, res.err)
			return m, nil
		}
		m.err = nil
		m.notice = res.name
	case MsgVisibility:
		if resynced, _ := msg.data.(bool); resynced {
			m.notice = "resynchronized"
		}
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.resync):
		return m, m.load(m.page.Reload)
	}

	if !m.loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.play):
		return m, m.send("play", m.player.Play)
	case key.Matches(msg, m.keys.pause):
		return m, m.send("pause", m.player.Pause)
	case key.Matches(msg, m.keys.next):
		return m, m.send("next", m.player.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.send("previous", m.player.Previous)
	case key.Matches(msg, m.keys.louder):
		return m, m.nudgeVolume(volumeStep)
	case key.Matches(msg, m.keys.quieter):
		return m, m.nudgeVolume(-volumeStep)
	case key.Matches(msg, m.keys.forward):
		return m, m.seek(seekStep)
	case key.Matches(msg, m.keys.rewind):
		return m, m.seek(-seekStep)
	case key.Matches(msg, m.keys.up):
		m.queue.CursorUp()
	case key.Matches(msg, m.keys.down):
		m.queue.CursorDown()
	case key.Matches(msg, m.keys.moveUp):
		return m, m.moveSelected(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.moveSelected(1)
	case key.Matches(msg, m.keys.skipTo):
		return m, m.skipToSelected()
	case key.Matches(msg, m.keys.search):
		return m, m.search.Focus()
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		m.search.Blur()
		return m, m.setQuery(m.search.Value())
	case key.Matches(msg, m.keys.back):
		m.search.Blur()
		m.search.SetValue(m.snap.query)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// refresh re-reads the page into the snapshot and the widgets built from it.
func (m *Model) refresh() {
	m.snap = takeSnapshot(m.page, m.cfg)

	cursor := m.queue.Index()
	m.queue.SetItems(m.snap.queue)
	if n := len(m.snap.queue); cursor >= n {
		m.queue.Select(max(0, n-1))
	}
	if !m.search.Focused() {
		m.search.SetValue(m.snap.query)
	}
}

// Tree mutations must not happen on the update goroutine: the change hook sends to the
// program, so every command below touches the page from a [tea.Cmd].

func (m *Model) load(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return pageLoadedMsg(err)
		}
		if m.stream != nil {
			m.stream.Connect(m.ctx)
		}
		return pageLoadedMsg(nil)
	}
}

func (m *Model) observe(v stream.Visibility) tea.Cmd {
	if m.visibility == nil {
		return nil
	}
	return func() tea.Msg {
		return visibilityMsg(m.visibility.Observe(m.ctx, v))
	}
}

func (m *Model) send(name string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg(name, fn(m.ctx))
	}
}

func (m *Model) nudgeVolume(delta int) tea.Cmd {
	cur, err := formatter.ParseVolume(m.snap.volume)
	if err != nil {
		return nil
	}
	v := formatter.ClampVolume(int(cur) + delta)
	return m.send("volume", func(ctx context.Context) error {
		return m.player.SetVolume(ctx, v)
	})
}

func (m *Model) seek(delta int64) tea.Cmd {
	if !m.snap.seekable {
		return nil
	}
	ms := max(0, m.snap.positionMS+delta)
	return m.send("seek", func(ctx context.Context) error {
		return m.player.SetPosition(ctx, ms)
	})
}

func (m *Model) moveSelected(delta int) tea.Cmd {
	lists := m.page.Sortables.Lists()
	if len(lists) == 0 {
		return nil
	}
	from := m.queue.Index()
	to := from + delta
	if to < 0 || to >= len(m.queue.Items()) {
		return nil
	}
	m.queue.Select(to)

	l := lists[0]
	return func() tea.Msg {
		return commandDoneMsg("reorder", l.Move(m.ctx, from, to))
	}
}

func (m *Model) skipToSelected() tea.Cmd {
	if len(m.queue.Items()) == 0 {
		return nil
	}
	index := m.queue.Index()
	return m.send("skip", func(ctx context.Context) error {
		return m.player.SkipTo(ctx, index)
	})
}

// setQuery types v into the page's search input and commits it.
func (m *Model) setQuery(v string) tea.Cmd {
	return func() tea.Msg {
		if input, ok := m.page.Tree.FindByID(m.cfg.SearchInputID); ok {
			input.SetValue(v)
		}
		return commandDoneMsg("search", m.page.Query.Set(v))
	}
}

func (m *Model) renderStatus() string {
	if m.snap.status == "" {
		return styles.help.Render("Nothing playing")
	}
	return styles.ok.Render(m.snap.status)
}

func (m *Model) renderTransport() string {
	return fmt.Sprintf("%s  %s  vol %s",
		m.bar.ViewAs(m.snap.percent),
		m.snap.position,
		formatter.FormatVolume(m.snap.volume),
	)
}

func (m *Model) renderToasts() string {
	n := min(maxToasts, len(m.snap.toasts))
	lines := make([]string, 0, n)
	for _, t := range m.snap.toasts[:n] {
		lines = append(lines, styles.Severity(t.sev).Render(t.text))
	}
	return strings.Join(lines, "\n")
}

func takeSnapshot(p *page.Page, cfg shared.PageConfig) snapshot {
	var s snapshot
	if subs := p.Fragments.Subscribers(models.KindStatus); len(subs) > 0 {
		s.status = collapse(subs[0].Text())
	}
	if el, ok := p.Tree.FindByID(cfg.VolumeID); ok {
		s.volume = el.Value()
	}
	if el, ok := p.Tree.FindByID(cfg.PositionID); ok {
		s.position = collapse(el.Text())
	}
	if el, ok := p.Tree.FindByID(cfg.ProgressID); ok {
		if ms, err := formatter.ParsePosition(el.Value()); err == nil {
			s.positionMS = ms
			s.seekable = true
		}
		s.percent = progressPercent(el, s.positionMS)
	}
	if lists := p.Sortables.Lists(); len(lists) > 0 {
		keys := lists[0].Items()
		for i, child := range lists[0].Element().Children() {
			if i >= len(keys) {
				break
			}
			s.queue = append(s.queue, newQueueItem(keys[i], child))
		}
	}
	for _, el := range p.Toasts.Entries() {
		s.toasts = append(s.toasts, toast{sev: toastSeverity(el), text: collapse(el.Text())})
	}
	if el, ok := p.Tree.FindByID(cfg.SearchInputID); ok {
		s.query = el.Value()
	}
	return s
}

func progressPercent(el dom.Element, ms int64) float64 {
	raw, ok := el.Attr("max")
	if !ok {
		return 0
	}
	total, err := formatter.ParsePosition(raw)
	if err != nil || total <= 0 {
		return 0
	}
	return min(1, max(0, float64(ms)/float64(total)))
}

// toastSeverity reads the severity from a data-severity attribute or a class named after it.
func toastSeverity(el dom.Element) models.Severity {
	if raw, ok := el.Attr("data-severity"); ok {
		if k, ok := models.ParseKind(raw); ok {
			if sev, ok := k.Severity(); ok {
				return sev
			}
		}
	}
	for _, sev := range []models.Severity{models.SeverityError, models.SeverityWarn, models.SeveritySuccess} {
		if el.HasClass(sev.String()) {
			return sev
		}
	}
	return models.SeverityInfo
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
