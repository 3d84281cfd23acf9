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

package connectwise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/dmhtech/assetsync/pkg/logger"
)

const (
	// tokenExpiryMargin is subtracted from the reported lifetime so a
	// token is refreshed before the platform actually rejects it.
	tokenExpiryMargin = 5 * time.Minute

	// defaultTokenLifetime applies when the token response omits
	// expires_in. Platform tokens are issued for one hour.
	defaultTokenLifetime = time.Hour
)

// OAuthAuthenticator exchanges client credentials for an access token.
type OAuthAuthenticator struct {
	config     Config
	httpClient HTTPClient
	logger     logger.Logger
}

// NewOAuthAuthenticator creates the client-credentials authenticator.
func NewOAuthAuthenticator(config Config, httpClient HTTPClient, log logger.Logger) *OAuthAuthenticator {
	return &OAuthAuthenticator{
		config:     config,
		httpClient: httpClient,
		logger:     log,
	}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate performs the OAuth2 client_credentials exchange.
func (a *OAuthAuthenticator) Authenticate(ctx context.Context) (string, time.Duration, error) {
	payload, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.TokenEndpoint,
		bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Content-Type", "application/json")

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

	a.logger.Info().Msg("Authenticated with monitoring platform")

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
