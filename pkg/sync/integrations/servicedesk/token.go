/*
 * Copyright 2025 DMH Technology Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package servicedesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	stdsync "sync"
	"time"

	"github.com/dmhtech/assetsync/pkg/logger"
)

const (
	// tokenExpiryMargin is subtracted from the reported lifetime so a
	// token is refreshed before the CMDB actually rejects it.
	tokenExpiryMargin = 5 * time.Minute

	// defaultTokenLifetime applies when the token response omits
	// expires_in. Zoho access tokens are issued for one hour.
	defaultTokenLifetime = time.Hour
)

// ZohoAuthenticator exchanges a long-lived refresh token for a short-lived
// access token at the Zoho accounts endpoint. The refresh token itself never
// expires unless revoked, so the exchange can repeat indefinitely.
type ZohoAuthenticator struct {
	config     Config
	httpClient HTTPClient
	logger     logger.Logger
}

// NewZohoAuthenticator creates the refresh-token authenticator.
func NewZohoAuthenticator(config Config, httpClient HTTPClient, log logger.Logger) *ZohoAuthenticator {
	return &ZohoAuthenticator{
		config:     config,
		httpClient: httpClient,
		logger:     log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate performs the OAuth2 refresh_token exchange. The Zoho token
// endpoint takes form-encoded parameters, not JSON.
func (a *ZohoAuthenticator) Authenticate(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {a.config.RefreshToken},
		"client_id":     {a.config.ClientID},
		"client_secret": {a.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.TokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", errAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to read response: %w", errAuthFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("%w: %d - %s", errAuthFailed, resp.StatusCode, body)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", 0, fmt.Errorf("%w: failed to parse token response: %w", errAuthFailed, err)
	}

	if token.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: empty access token", errAuthFailed)
	}

	lifetime := defaultTokenLifetime
	if token.ExpiresIn > 0 {
		lifetime = time.Duration(token.ExpiresIn) * time.Second
	}

	a.logger.Info().Msg("Refreshed CMDB access token")

	return token.AccessToken, lifetime, nil
}

// CachedTokenProvider wraps an Authenticator and caches the access token
// until shortly before expiry.
type CachedTokenProvider struct {
	authenticator Authenticator
	mu            stdsync.RWMutex
	token         string
	expiry        time.Time
}

// NewCachedTokenProvider creates a new cached token provider.
func NewCachedTokenProvider(authenticator Authenticator) *CachedTokenProvider {
	return &CachedTokenProvider{
		authenticator: authenticator,
	}
}

// GetAccessToken returns a cached token if valid, otherwise fetches a new one.
func (c *CachedTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && time.Now().Before(c.expiry) {
		token := c.token
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check in case another goroutine already fetched a token.
	if c.token != "" && time.Now().Before(c.expiry) {
		return c.token, nil
	}

	token, lifetime, err := c.authenticator.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiry = time.Now().Add(lifetime - tokenExpiryMargin)

	return token, nil
}

// InvalidateToken clears the cached token, forcing re-authentication on
// the next call. Invoked after a 401.
func (c *CachedTokenProvider) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiry = time.Time{}
}
