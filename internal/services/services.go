package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/formatter"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://127.0.0.1:9888"

// PageServiceOpts configures a [PageService].
type PageServiceOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables limiting
	Logger     *log.Logger
}

// PageService loads markup from and sends commands to the player web server.
type PageService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewPageService creates a new [PageService].
func NewPageService(opts PageServiceOpts) *PageService {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &PageService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
		logger:     shared.WithLogger(logger, "service", "page"),
	}
}

// BaseURL returns the server origin requests are sent to.
func (s *PageService) BaseURL() string { return s.baseURL }

// URL resolves path against the base URL. Absolute URLs are returned unchanged.
func (s *PageService) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Load fetches the markup at path, implementing [dom.Loader].
func (s *PageService) Load(ctx context.Context, path string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("Accept", "text/html")

	body, status, err := s.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrFragmentLoad, path, status)
	}

	s.logger.Debug("loaded fragment", "path", path, "bytes", len(body))
	return body, nil
}

// Play resumes playback.
func (s *PageService) Play(ctx context.Context) error { return s.command(ctx, "/api/play") }

// Pause pauses playback.
func (s *PageService) Pause(ctx context.Context) error { return s.command(ctx, "/api/pause") }

// Next skips to the next track.
func (s *PageService) Next(ctx context.Context) error { return s.command(ctx, "/api/next") }

// Previous returns to the previous track.
func (s *PageService) Previous(ctx context.Context) error { return s.command(ctx, "/api/previous") }

// SetVolume sets the player volume, clamped to 0..100.
func (s *PageService) SetVolume(ctx context.Context, volume int) error {
	v := formatter.ClampVolume(volume)
	return s.Post(ctx, "/api/volume", url.Values{"value": {strconv.Itoa(v)}})
}

// SetPosition seeks to ms milliseconds into the current track.
func (s *PageService) SetPosition(ctx context.Context, ms int64) error {
	return s.Post(ctx, "/api/position", url.Values{"value": {strconv.FormatInt(max(0, ms), 10)}})
}

// SkipTo jumps to the entry at the zero-based index in the play queue.
func (s *PageService) SkipTo(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: queue index %d", shared.ErrInvalidInput, index)
	}
	return s.command(ctx, "/api/skip-to/"+strconv.Itoa(index))
}

// PlayTrack replaces the queue with the track and plays it.
func (s *PageService) PlayTrack(ctx context.Context, trackID uint32) error {
	return s.command(ctx, "/api/play-track/"+strconv.FormatUint(uint64(trackID), 10))
}

// Favorite applies action to a track. queueIndex is only read by
// [models.ActionRemoveFromQueue] but is always sent.
func (s *PageService) Favorite(ctx context.Context, trackID uint32, action models.TrackAction, queueIndex int) error {
	if _, ok := models.ParseTrackAction(string(action)); !ok {
		return fmt.Errorf("%w: track action %q", shared.ErrInvalidInput, action)
	}
	form := url.Values{
		"track_id":    {strconv.FormatUint(uint64(trackID), 10)},
		"action":      {string(action)},
		"queue_index": {strconv.Itoa(max(0, queueIndex))},
	}
	return s.submit(ctx, http.MethodPut, "/api/track/favorite", form)
}

// Post submits form to path as application/x-www-form-urlencoded.
func (s *PageService) Post(ctx context.Context, path string, form url.Values) error {
	return s.submit(ctx, http.MethodPost, path, form)
}

func (s *PageService) submit(ctx context.Context, method, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, method, s.URL(path), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return s.send(req)
}

func (s *PageService) command(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("HX-Request", "true")
	return s.send(req)
}

func (s *PageService) send(req *http.Request) error {
	body, status, err := s.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: %s %s returned status %d: %s",
			shared.ErrAPIRequest, req.Method, req.URL.Path, status, strings.TrimSpace(string(body)))
	}
	s.logger.Debug("sent command", "method", req.Method, "path", req.URL.Path)
	return nil
}

func (s *PageService) do(req *http.Request) ([]byte, int, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
