package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Page    PageConfig    `toml:"page"`
	Storage StorageConfig `toml:"storage"`
	Stream  StreamConfig  `toml:"stream"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig locates the player web server whose page is mirrored.
type ServerConfig struct {
	BaseURL    string        `toml:"base_url"`
	EventsPath string        `toml:"events_path"`
	PagePath   string        `toml:"page_path"`
	Timeout    time.Duration `toml:"timeout"`
	RateLimit  float64       `toml:"rate_limit"` // fragment loads per second
}

// PageConfig names the DOM contract the page components depend on.
type PageConfig struct {
	VolumeID      string        `toml:"volume_id"`
	ProgressID    string        `toml:"progress_id"`
	PositionID    string        `toml:"position_id"`
	ToastsID      string        `toml:"toasts_id"`
	SearchInputID string        `toml:"search_input_id"`
	SubscribeAttr string        `toml:"subscribe_attr"`
	SortableClass string        `toml:"sortable_class"`
	HandleClass   string        `toml:"handle_class"`
	Animation     time.Duration `toml:"animation"`
	SessionKey    string        `toml:"session_key"`
	QueryParam    string        `toml:"query_param"`
	Tabs          TabsConfig    `toml:"tabs"`
}

// TabsConfig holds the ids of the search tab links.
type TabsConfig struct {
	Albums    string `toml:"albums"`
	Artists   string `toml:"artists"`
	Playlists string `toml:"playlists"`
	Tracks    string `toml:"tracks"`
}

// StorageConfig selects the session storage backend.
type StorageConfig struct {
	Driver       string `toml:"driver"` // memory, sqlite or bolt
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StreamConfig tunes the event stream transport.
type StreamConfig struct {
	Buffer          int           `toml:"buffer"`
	InitialInterval time.Duration `toml:"initial_interval"`
	MaxInterval     time.Duration `toml:"max_interval"`
	MaxElapsed      time.Duration `toml:"max_elapsed"` // 0 retries forever
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first invalid setting, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server.base_url %q", ErrInvalidConfig, c.Server.BaseURL)
	}
	if c.Server.EventsPath == "" {
		return fmt.Errorf("%w: server.events_path is empty", ErrInvalidConfig)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case "memory", "sqlite", "bolt":
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownDriver, c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required for %s", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Page.SessionKey == "" || c.Page.QueryParam == "" {
		return fmt.Errorf("%w: page.session_key and page.query_param are required", ErrInvalidConfig)
	}
	if c.Stream.Buffer < 0 {
		return fmt.Errorf("%w: stream.buffer must not be negative", ErrInvalidConfig)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// URL joins path onto the server base URL.
func (c *Config) URL(path string) string {
	base := c.Server.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return base + path
}
