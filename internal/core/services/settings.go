package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyServerURL        = "server.url"
	KeyServerToken      = "server.token"
	KeyServerTeamID     = "server.team_id"
	KeySearchBackend    = "search.backend"
	KeySearchTimeout    = "search.timeout_seconds"
	KeySearchDebounce   = "search.debounce_ms"
	KeySearchHistory    = "search.history_limit"
	KeySearchRate       = "search.rate_per_second"
	KeyFilesCanDownload = "files.can_download"
	KeyFilesPublicLink  = "files.public_link_enabled"
	KeyFilesDownloadDir = "files.download_dir"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{KeyServerURL, kindString},
	{KeyServerToken, kindString},
	{KeyServerTeamID, kindString},
	{KeySearchBackend, kindString},
	{KeySearchTimeout, kindInt},
	{KeySearchDebounce, kindInt},
	{KeySearchHistory, kindInt},
	{KeySearchRate, kindFloat},
	{KeyFilesCanDownload, kindBool},
	{KeyFilesPublicLink, kindBool},
	{KeyFilesDownloadDir, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings with defaults applied.
func (s *SettingsService) Get() domain.Settings {
	defaults := domain.DefaultSettings()

	backend, err := domain.ParseBackend(s.configStore.GetString(KeySearchBackend))
	if err != nil {
		backend = defaults.Search.Backend
	}

	return domain.Settings{
		Server: domain.ServerSettings{
			URL:    strings.TrimRight(s.configStore.GetString(KeyServerURL), "/"),
			Token:  s.configStore.GetString(KeyServerToken),
			TeamID: s.configStore.GetString(KeyServerTeamID),
		},
		Search: domain.SearchSettings{
			Backend:       backend,
			Timeout:       s.getDuration(KeySearchTimeout, time.Second, defaults.Search.Timeout),
			Debounce:      s.getDuration(KeySearchDebounce, time.Millisecond, defaults.Search.Debounce),
			HistoryLimit:  s.getInt(KeySearchHistory, defaults.Search.HistoryLimit),
			RatePerSecond: s.getFloat(KeySearchRate, defaults.Search.RatePerSecond),
		},
		Files: domain.FileSettings{
			Capabilities: CapabilitiesFrom(s.configStore),
			DownloadDir:  s.configStore.GetString(KeyFilesDownloadDir),
		},
	}
}

// Set validates and persists a single setting by key.
func (s *SettingsService) Set(key, value string) error {
	for _, k := range settingKeys {
		if k.key != key {
			continue
		}
		parsed, err := parseSetting(k.key, k.kind, value)
		if err != nil {
			return err
		}
		if err := s.configStore.Set(key, parsed); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Keys lists the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Value formats the effective value of a key, defaults applied.
func (s *SettingsService) Value(key string) (string, error) {
	cfg := s.Get()
	switch key {
	case KeyServerURL:
		return cfg.Server.URL, nil
	case KeyServerToken:
		return cfg.Server.Token, nil
	case KeyServerTeamID:
		return cfg.Server.TeamID, nil
	case KeySearchBackend:
		return string(cfg.Search.Backend), nil
	case KeySearchTimeout:
		return strconv.Itoa(int(cfg.Search.Timeout / time.Second)), nil
	case KeySearchDebounce:
		return strconv.FormatInt(cfg.Search.Debounce.Milliseconds(), 10), nil
	case KeySearchHistory:
		return strconv.Itoa(cfg.Search.HistoryLimit), nil
	case KeySearchRate:
		return strconv.FormatFloat(cfg.Search.RatePerSecond, 'f', -1, 64), nil
	case KeyFilesCanDownload:
		return strconv.FormatBool(cfg.Files.Capabilities.CanDownloadFiles), nil
	case KeyFilesPublicLink:
		return strconv.FormatBool(cfg.Files.Capabilities.PublicLinkEnabled), nil
	case KeyFilesDownloadDir:
		return cfg.Files.DownloadDir, nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// CapabilitiesFrom reads the file capability flags from a config store.
// Missing flags take their defaults.
func CapabilitiesFrom(store driven.ConfigStore) domain.Capabilities {
	defaults := domain.DefaultSettings().Files.Capabilities
	caps := defaults
	if _, ok := store.Get(KeyFilesCanDownload); ok {
		caps.CanDownloadFiles = store.GetBool(KeyFilesCanDownload)
	}
	if _, ok := store.Get(KeyFilesPublicLink); ok {
		caps.PublicLinkEnabled = store.GetBool(KeyFilesPublicLink)
	}
	return caps
}

func parseSetting(key string, kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return int64(n), nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	default:
		if key == KeySearchBackend {
			if _, err := domain.ParseBackend(value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return def
}

func (s *SettingsService) getFloat(key string, def float64) float64 {
	if v := s.configStore.GetFloat(key); v > 0 {
		return v
	}
	return def
}

// getDuration reads an integer key in unit. Zero is kept only for the
// debounce, where it disables search-as-you-type.
func (s *SettingsService) getDuration(key string, unit, def time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	v := s.configStore.GetInt(key)
	if v < 0 || (v == 0 && key != KeySearchDebounce) {
		return def
	}
	return time.Duration(v) * unit
}
