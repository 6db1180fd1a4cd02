package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// refreshScope is the scope the public clients request; the grant fails
// without it.
const refreshScope = "r_usr+w_usr+w_sub"

// TokenRefresh exchanges refreshToken for a new access token via the
// refresh_token grant and stores the result. It returns true when the
// session now holds a fresh token, false when the authorization server
// rejected the grant (invalid or revoked refresh token). Transport and
// protocol surprises are returned as errors.
func (s *Session) TokenRefresh(ctx context.Context, refreshToken string) (bool, error) {
	tokenURL, err := url.JoinPath(s.authLocation(), "token")
	if err != nil {
		return false, fmt.Errorf("build token url: %w", err)
	}

	form := url.Values{}
	form.Set("client_id", s.clientID())
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")
	form.Set("scope", refreshScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if id, secret := s.clientID(), s.clientSecret(); secret != "" {
		req.SetBasicAuth(id, secret)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("issue refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read refresh response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		// Rejected grant: the refresh token is invalid, revoked or the
		// client credentials are wrong. Not an error, just not refreshed.
		log.Warn().
			Str("component", "tidal-session").
			Int("status_code", resp.StatusCode).
			Msg("Token refresh rejected")
		return false, nil
	default:
		return false, fmt.Errorf("unexpected refresh status %d: %s", resp.StatusCode, string(body))
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return false, fmt.Errorf("decode refresh response: %w", err)
	}
	if grant.AccessToken == "" {
		return false, fmt.Errorf("refresh response carries no access token")
	}

	s.mu.Lock()
	s.cfg.AccessToken = grant.AccessToken
	if grant.TokenType != "" {
		s.cfg.TokenType = grant.TokenType
	}
	s.mu.Unlock()

	log.Debug().
		Str("component", "tidal-session").
		Msg("Access token refreshed")
	return true, nil
}

func (s *Session) authLocation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.AuthLocation
}

func (s *Session) clientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ClientID
}

func (s *Session) clientSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ClientSecret
}
