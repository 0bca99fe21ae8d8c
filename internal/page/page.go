package page

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/shared"
)

// Poster submits forms, used to persist list order after a drag.
type Poster interface {
	Post(ctx context.Context, path string, form url.Values) error
}

// Opts configures a [Page].
type Opts struct {
	Config   shared.PageConfig
	Path     string // path of the page document
	Loader   dom.Loader
	Poster   Poster
	Storage  Storage
	Location Location
	Logger   *log.Logger
}

// Page owns the mirrored document and the components bound to it.
type Page struct {
	Tree      *dom.Tree
	Fragments *Fragments
	Toasts    *Toasts
	Controls  *Controls
	Query     *QueryState
	Sortables *Sortables

	loader dom.Loader
	poster Poster
	path   string
	logger *log.Logger

	mu       sync.Mutex
	onLoaded []func(ctx context.Context)
}

// New wires the page components to a fresh [dom.Tree]. Nothing is fetched until [Page.Load].
func New(opts Opts) *Page {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	cfg := opts.Config
	path := opts.Path
	if path == "" {
		path = "/"
	}

	store := opts.Storage
	if store == nil {
		store = repositories.NewMemorySessionStore(shared.GenerateID())
	}
	loc := opts.Location
	if loc == nil {
		loc = NewHistory(&url.URL{Path: path})
	}

	tree := dom.NewTree(opts.Loader)
	p := &Page{
		Tree:      tree,
		Fragments: NewFragments(tree, cfg.SubscribeAttr, shared.WithLogger(logger, "component", "fragments")),
		Toasts:    NewToasts(tree, cfg.ToastsID, shared.WithLogger(logger, "component", "toasts")),
		Controls: NewControls(tree, ControlIDs{
			Volume:   cfg.VolumeID,
			Progress: cfg.ProgressID,
			Position: cfg.PositionID,
		}, shared.WithLogger(logger, "component", "controls")),
		Query: NewQueryState(QueryStateOpts{
			Document:   tree,
			Storage:    store,
			Location:   loc,
			SessionKey: cfg.SessionKey,
			Param:      cfg.QueryParam,
			InputID:    cfg.SearchInputID,
			Tabs: map[models.Tab]string{
				models.TabAlbums:    cfg.Tabs.Albums,
				models.TabArtists:   cfg.Tabs.Artists,
				models.TabPlaylists: cfg.Tabs.Playlists,
				models.TabTracks:    cfg.Tabs.Tracks,
			},
		}),
		loader: opts.Loader,
		poster: opts.Poster,
		path:   path,
		logger: logger,
	}
	p.Sortables = NewSortables(SortablesOpts{
		Class:     cfg.SortableClass,
		Handle:    cfg.HandleClass,
		Animation: cfg.Animation,
		OnEnd:     p.persistOrder,
		Logger:    shared.WithLogger(logger, "component", "sortables"),
	})

	tree.OnLoad(func(root dom.Element) { p.Sortables.Bind(root) })
	return p
}

// OnLoaded registers fn to run after every successful [Page.Load].
func (p *Page) OnLoaded(fn func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLoaded = append(p.onLoaded, fn)
}

// Load fetches the page document, replaces the tree and restores the search query.
func (p *Page) Load(ctx context.Context) error {
	if p.loader == nil {
		return fmt.Errorf("%w: page has no loader", shared.ErrFragmentLoad)
	}
	body, err := p.loader.Load(ctx, p.path)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	if err := p.Tree.Replace(body); err != nil {
		return err
	}

	if _, _, err := p.Query.Load(); err != nil {
		p.logger.Warn("could not restore search query", "err", err)
	}

	p.mu.Lock()
	hooks := make([]func(context.Context), len(p.onLoaded))
	copy(hooks, p.onLoaded)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
	p.logger.Debug("page loaded", "path", p.path)
	return nil
}

// Reload discards the current document and loads it again.
func (p *Page) Reload(ctx context.Context) error {
	p.logger.Info("reloading page", "path", p.path)
	return p.Load(ctx)
}

func (p *Page) persistOrder(ctx context.Context, ev SortEvent) {
	target, ok := ev.List.Attr("hx-post")
	if !ok || target == "" || p.poster == nil {
		return
	}
	if err := p.poster.Post(ctx, target, url.Values{"order": ev.Order}); err != nil {
		p.logger.Warn("could not save list order", "path", target, "err", err)
	}
}
