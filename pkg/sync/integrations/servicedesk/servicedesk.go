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

// Package servicedesk implements the target-side client for the CMDB's
// Assets API: Zoho OAuth2 refresh-token auth, input_data request wrapping,
// list_info pagination, and asset create/update with schema-rejection
// reporting.
package servicedesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/ratelimit"
)

const (
	assetsPath = "/assets"

	// acceptHeader selects the v3 JSON representation of the Assets API.
	acceptHeader = "application/vnd.manageengine.sdp.v3+json"

	defaultPageSize   = 100
	defaultMaxRetries = 5
)

// Config holds the connection settings for the CMDB Assets API.
type Config struct {
	Endpoint      string        `json:"endpoint"`
	TokenEndpoint string        `json:"token_endpoint"`
	ClientID      string        `json:"client_id"`
	ClientSecret  string        `json:"client_secret"`
	RefreshToken  string        `json:"refresh_token"`
	PageSize      int           `json:"page_size,omitempty"`
	MaxRetries    int           `json:"max_retries,omitempty"`
	DryRun        bool          `json:"dry_run,omitempty"`
	Timeout       time.Duration `json:"-"`
}

// Client reads and writes assets in the CMDB. With DryRun set, write calls
// log what they would do and return without touching the API.
type Client struct {
	config     Config
	httpClient HTTPClient
	tokens     TokenProvider
	limiter    *ratelimit.Limiter
	logger     logger.Logger
}

// NewClient wires a client from its collaborators. A nil httpClient falls
// back to a default with the configured timeout.
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
		logger:     log.WithComponent("servicedesk"),
	}
}

type listInfo struct {
	RowCount   int  `json:"row_count"`
	StartIndex int  `json:"start_index"`
	HasMore    bool `json:"has_more_rows,omitempty"`
}

type assetsPage struct {
	Assets   []json.RawMessage `json:"assets"`
	ListInfo listInfo          `json:"list_info"`
}

// ListAssets fetches the full asset inventory. Pagination uses a 1-based
// start index carried in the input_data query parameter; the list_info
// block of each page says whether more rows remain.
func (c *Client) ListAssets(ctx context.Context) ([]models.Asset, error) {
	c.logger.Info().Msg("Fetching assets from CMDB")

	var assets []models.Asset

	for startIndex := 1; ; startIndex += c.config.PageSize {
		request, err := json.Marshal(map[string]listInfo{
			"list_info": {RowCount: c.config.PageSize, StartIndex: startIndex},
		})
		if err != nil {
			return nil, err
		}

		query := url.Values{"input_data": {string(request)}}

		body, err := c.request(ctx, http.MethodGet, assetsPath+"?"+query.Encode(), "")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch assets at index %d: %w", startIndex, err)
		}

		var page assetsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse assets response: %w", err)
		}

		for _, raw := range page.Assets {
			asset, err := parseAsset(raw)
			if err != nil {
				c.logger.Warn().Err(err).Msg("Skipping undecodable asset record")
				continue
			}

			assets = append(assets, asset)
		}

		c.logger.Debug().
			Int("start_index", startIndex).
			Int("page_assets", len(page.Assets)).
			Int("total", len(assets)).
			Msg("Fetched asset page")

		if !page.ListInfo.HasMore || len(page.Assets) == 0 {
			break
		}
	}

	c.logger.Info().Int("assets", len(assets)).Msg("Asset fetch complete")

	return assets, nil
}

// parseAsset flattens one raw asset record. The OS lives in a nested
// operating_system block, the manufacturer in the product reference with
// computer_system as fallback, and the asset type in product_type.
func parseAsset(raw json.RawMessage) (models.Asset, error) {
	var record models.Device
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.Asset{}, fmt.Errorf("failed to parse asset record: %w", err)
	}

	manufacturer := record.StringAt("product.manufacturer")
	if manufacturer == "" {
		manufacturer = record.StringAt("computer_system.system_manufacturer")
	}

	return models.Asset{
		ID:           record.StringAt("id"),
		Name:         record.StringAt("name"),
		SerialNumber: record.StringAt("serial_number"),
		IPAddress:    record.StringAt("ip_address"),
		MacAddress:   record.StringAt("mac_address"),
		OS:           record.StringAt("operating_system.os"),
		Manufacturer: manufacturer,
		CIType:       record.StringAt("product_type.api_plural_name"),
		RawJSON:      string(raw),
	}, nil
}

// CreateAsset creates a new asset of the given type. The payload nests the
// field map under the singular form of the type name. Returns the id the
// CMDB assigned.
func (c *Client) CreateAsset(ctx context.Context, ciType string, fields map[string]string) (string, error) {
	name := fields["name"]

	if c.config.DryRun {
		c.logger.Warn().Str("ci_type", ciType).Str("name", name).Msg("DRY RUN: blocked asset create")
		return "", nil
	}

	singular := strings.TrimSuffix(ciType, "s")
	payload := map[string]map[string]string{singular: compactFields(fields)}

	body, err := c.write(ctx, http.MethodPost, "/"+ciType, payload)
	if err != nil {
		return "", fmt.Errorf("failed to create %s %q: %w", ciType, name, err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("failed to parse create response: %w", err)
	}

	raw, ok := envelope[singular]
	if !ok {
		return "", fmt.Errorf("%w: no %q key in response", errMissingAssetID, singular)
	}

	var created models.Device
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("failed to parse created asset: %w", err)
	}

	id := created.StringAt("id")
	if id == "" {
		return "", errMissingAssetID
	}

	c.logger.Info().Str("ci_type", ciType).Str("name", name).Str("asset_id", id).Msg("Created asset")

	return id, nil
}

// UpdateAsset updates an existing asset through the generic assets
// endpoint, which accepts any asset type.
func (c *Client) UpdateAsset(ctx context.Context, id string, fields map[string]string) error {
	name := fields["name"]

	if c.config.DryRun {
		c.logger.Warn().Str("asset_id", id).Str("name", name).Msg("DRY RUN: blocked asset update")
		return nil
	}

	payload := map[string]map[string]string{"asset": compactFields(fields)}

	if _, err := c.write(ctx, http.MethodPut, fmt.Sprintf("%s/%s", assetsPath, id), payload); err != nil {
		return fmt.Errorf("failed to update asset %s %q: %w", id, name, err)
	}

	c.logger.Info().Str("asset_id", id).Str("name", name).Msg("Updated asset")

	return nil
}

// compactFields drops empty values so the API never sees blank keys.
func compactFields(fields map[string]string) map[string]string {
	compacted := make(map[string]string, len(fields))

	for key, value := range fields {
		if value == "" {
			continue
		}

		compacted[key] = value
	}

	return compacted
}

// write serializes the payload into the input_data form field the Assets
// API expects for POST and PUT.
func (c *Client) write(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	form := url.Values{"input_data": {string(data)}}

	return c.request(ctx, method, path, form.Encode())
}

// request runs one call through the rate limiter and the retry policy:
// 2xx feeds the limiter's success streak; 401 triggers a single
// re-authentication; 429 backs off (honoring Retry-After) and retries;
// network errors and 5xx responses burn bounded retry attempts. Schema
// rejections surface as *ExtraFieldError. The form body is carried as a
// string so every retry attempt sends a fresh copy.
func (c *Client) request(ctx context.Context, method, path, form string) ([]byte, error) {
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

		var reqBody io.Reader = http.NoBody
		if form != "" {
			reqBody = strings.NewReader(form)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, reqBody)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
		req.Header.Set("Accept", acceptHeader)

		if form != "" {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

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
		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
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

			if fields := parseExtraFields(body); len(fields) > 0 {
				return nil, &ExtraFieldError{Fields: fields}
			}

			return nil, fmt.Errorf("%w: %d - %s", errUnexpectedStatusCode, resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %w", errMaxRetriesExceeded, c.config.MaxRetries, lastErr)
}

type responseStatus struct {
	Messages []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"messages"`
}

// parseExtraFields extracts the field names an error response rejected as
// unknown keys. Anything other than the EXTRA_KEY_FOUND_IN_JSON shape
// yields nil.
func parseExtraFields(body []byte) []string {
	var envelope struct {
		ResponseStatus responseStatus `json:"response_status"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	var fields []string

	for _, msg := range envelope.ResponseStatus.Messages {
		if msg.Message == "EXTRA_KEY_FOUND_IN_JSON" && msg.Field != "" {
			fields = append(fields, msg.Field)
		}
	}

	return fields
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
