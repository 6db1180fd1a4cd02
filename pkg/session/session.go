// Package session holds the credentials and configuration the request
// layer reads at call time, and implements the refresh-token grant that
// keeps an expired access token usable.
//
// Login and device-authorization flows are deliberately not implemented
// here; sessions are seeded with existing tokens (typically from the
// environment, see FromEnv) and only refreshed.
package session

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamkit/go-tidal/pkg/request"
)

const (
	// DefaultAPILocation is the v1 REST API base. The trailing slash
	// matters: relative request paths extend it instead of replacing it.
	DefaultAPILocation = "https://api.tidal.com/v1/"

	// DefaultAuthLocation is the OAuth2 endpoint base used for token
	// refresh.
	DefaultAuthLocation = "https://auth.tidal.com/v1/oauth2"

	// DefaultItemLimit is the default limit parameter sent with every
	// request.
	DefaultItemLimit = 100
)

// Config holds the session configuration.
type Config struct {
	// SessionID and CountryCode are merged into every request's query.
	SessionID   string
	CountryCode string

	// APILocation is the base URL request paths resolve against.
	APILocation string

	// AuthLocation is the OAuth2 base URL for token refresh.
	AuthLocation string

	// ItemLimit is the default limit parameter for list endpoints.
	ItemLimit int

	// TokenType prefixes the authorization header ("Bearer"). Leave empty
	// for unauthenticated sessions; no header is sent then.
	TokenType    string
	AccessToken  string
	RefreshToken string

	// ClientID and ClientSecret authenticate the refresh-token grant.
	ClientID     string
	ClientSecret string
}

// DefaultConfig returns a configuration with the public API endpoints and
// the standard item limit filled in.
func DefaultConfig() Config {
	return Config{
		APILocation:  DefaultAPILocation,
		AuthLocation: DefaultAuthLocation,
		ItemLimit:    DefaultItemLimit,
		TokenType:    "Bearer",
	}
}

// FromEnv builds a configuration from TIDAL_* environment variables on top
// of DefaultConfig. A .env file in the working directory is loaded first
// when present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	setEnv(&cfg.SessionID, "TIDAL_SESSION_ID")
	setEnv(&cfg.CountryCode, "TIDAL_COUNTRY_CODE")
	setEnv(&cfg.APILocation, "TIDAL_API_LOCATION")
	setEnv(&cfg.AuthLocation, "TIDAL_AUTH_LOCATION")
	setEnv(&cfg.TokenType, "TIDAL_TOKEN_TYPE")
	setEnv(&cfg.AccessToken, "TIDAL_ACCESS_TOKEN")
	setEnv(&cfg.RefreshToken, "TIDAL_REFRESH_TOKEN")
	setEnv(&cfg.ClientID, "TIDAL_CLIENT_ID")
	setEnv(&cfg.ClientSecret, "TIDAL_CLIENT_SECRET")
	if v := os.Getenv("TIDAL_ITEM_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			cfg.ItemLimit = limit
		}
	}
	return cfg
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Session is a mutex-guarded credential holder implementing
// request.Session. TokenRefresh rotates the held access token in place, so
// requests in flight on other goroutines pick up the new token on their
// next read.
type Session struct {
	mu   sync.RWMutex
	cfg  Config
	http *http.Client
}

// Compile-time interface implementation check.
var _ request.Session = (*Session)(nil)

// New creates a session from a configuration, filling in defaults for any
// endpoint or limit left unset.
func New(cfg Config) *Session {
	if cfg.APILocation == "" {
		cfg.APILocation = DefaultAPILocation
	}
	if cfg.AuthLocation == "" {
		cfg.AuthLocation = DefaultAuthLocation
	}
	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = DefaultItemLimit
	}
	if cfg.TokenType == "" && cfg.AccessToken != "" {
		cfg.TokenType = "Bearer"
	}
	return &Session{
		cfg: cfg,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SessionID returns the session identifier merged into request queries.
func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.SessionID
}

// CountryCode returns the two-letter country code merged into request
// queries.
func (s *Session) CountryCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.CountryCode
}

// TokenType returns the authorization scheme, empty when unauthenticated.
func (s *Session) TokenType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.TokenType
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.AccessToken
}

// RefreshToken returns the refresh token, empty when refresh is not
// configured.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.RefreshToken
}

// APILocation returns the API base URL.
func (s *Session) APILocation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.APILocation
}

// ItemLimit returns the default limit parameter.
func (s *Session) ItemLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ItemLimit
}

// SetHTTPClient replaces the HTTP client used for token refresh (for
// testing).
func (s *Session) SetHTTPClient(client *http.Client) {
	s.http = client
}
