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

// Package connectwise implements the source-side client for the device
// monitoring platform's endpoint API: OAuth2 client-credentials auth,
// adaptive rate limiting, and paginated device fetches.
package connectwise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/ratelimit"
)

const (
	endpointsPath = "/api/platform/v1/device/endpoints"

	defaultPageSize   = 100
	defaultMaxRetries = 5
)

// Config holds the connection settings for the monitoring platform API.
type Config struct {
	Endpoint      string        `json:"endpoint"`
	TokenEndpoint string        `json:"token_endpoint"`
	ClientID      string        `json:"client_id"`
	ClientSecret  string        `json:"client_secret"`
	PageSize      int           `json:"page_size,omitempty"`
	MaxRetries    int           `json:"max_retries,omitempty"`
	Timeout       time.Duration `json:"-"`
}

// Client fetches device inventories from the monitoring platform.
type Client struct {
	config     Config
	httpClient HTTPClient
	tokens     TokenProvider
	limiter    *ratelimit.Limiter
	logger     logger.Logger
}

// NewClient wires a client from its collaborators. A nil httpClient
// falls back to a default with the configured timeout.
func NewClient(config Config, httpClient HTTPClient, tokens TokenProvider,
	limiter *ratelimit.Limiter, log logger.Logger) *Client {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}

	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    limiter,
		logger:     log.WithComponent("connectwise"),
	}
}

type endpointsResponse struct {
	Endpoints []models.Device `json:"endpoints"`
}

// ListDevices fetches the full device inventory, page by page.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	c.logger.Info().Msg("Fetching devices from monitoring platform")

	var devices []models.Device

	for page := 1; ; page++ {
		path := fmt.Sprintf("%s?page=%d&pageSize=%d", endpointsPath, page, c.config.PageSize)

		body, err := c.request(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch device page %d: %w", page, err)
		}

		var payload endpointsResponse
		if err := unmarshalEndpoints(body, &payload); err != nil {
			return nil, err
		}

		devices = append(devices, payload.Endpoints...)

		c.logger.Debug().
			Int("page", page).
			Int("page_devices", len(payload.Endpoints)).
			Int("total", len(devices)).
			Msg("Fetched device page")

		if len(payload.Endpoints) < c.config.PageSize {
			break
		}
	}

	c.logger.Info().Int("devices", len(devices)).Msg("Device fetch complete")

	return devices, nil
}

// GetDeviceDetail fetches the full record for one endpoint. The list
// response carries a trimmed projection; detail includes the complete
// hardware inventory.
func (c *Client) GetDeviceDetail(ctx context.Context, id string) (models.Device, error) {
	body, err := c.request(ctx, fmt.Sprintf("%s/%s", endpointsPath, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device %s: %w", id, err)
	}

	var device models.Device
	if err := json.Unmarshal(body, &device); err != nil {
		return nil, fmt.Errorf("failed to parse device %s: %w", id, err)
	}

	return device, nil
}

// unmarshalEndpoints parses a device list page, distinguishing an empty
// page from a response that lacks the endpoints envelope entirely.
func unmarshalEndpoints(body []byte, payload *endpointsResponse) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("failed to parse endpoints response: %w", err)
	}

	raw, ok := probe["endpoints"]
	if !ok {
		return errUnexpectedResponse
	}

	if err := json.Unmarshal(raw, &payload.Endpoints); err != nil {
		return fmt.Errorf("failed to parse endpoints list: %w", err)
	}

	return nil
}

// request runs one GET through the rate limiter and the retry policy:
// 200 feeds the limiter's success streak; 401 triggers a single
// re-authentication; 429 backs off (honoring Retry-After) and retries;
// network errors and 5xx responses burn bounded retry attempts.
func (c *Client) request(ctx context.Context, path string) ([]byte, error) {
	var lastErr error

	reauthed := false

	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		token, err := c.tokens.GetAccessToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.config.Endpoint+path, http.NoBody)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.limiter.OnError()

			lastErr = err

			c.logger.Warn().Int("attempt", attempt).Err(err).Msg("Request attempt failed")

			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			c.limiter.OnError()

			lastErr = readErr

			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			c.limiter.OnSuccess()

			return body, nil

		case resp.StatusCode == http.StatusUnauthorized:
			if reauthed {
				return nil, fmt.Errorf("%w: still unauthorized after re-authentication", errAuthFailed)
			}

			reauthed = true

			c.logger.Warn().Msg("Token expired, re-authenticating")
			c.tokens.InvalidateToken()

			// Re-auth does not consume a retry attempt.
			attempt--

		case resp.StatusCode == http.StatusTooManyRequests:
			if err := c.limiter.OnRateLimited(ctx, retryAfter(resp)); err != nil {
				return nil, err
			}

		case resp.StatusCode >= http.StatusInternalServerError:
			c.limiter.OnError()

			lastErr = fmt.Errorf("%w: %d - %s", errUnexpectedStatusCode, resp.StatusCode, body)

		default:
			c.limiter.OnError()

			return nil, fmt.Errorf("%w: %d - %s", errUnexpectedStatusCode, resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %w", errMaxRetriesExceeded, c.config.MaxRetries, lastErr)
}

// retryAfter parses the Retry-After header as whole seconds. A missing
// or malformed header yields zero, letting the limiter fall back to its
// own backoff factor.
func retryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
