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

package sync

import (
	"fmt"

	"github.com/dmhtech/assetsync/pkg/models"
	"github.com/dmhtech/assetsync/pkg/ratelimit"
)

const defaultPageSize = 100

// APIConfig holds the connection settings for one upstream API.
type APIConfig struct {
	Endpoint      string          `json:"endpoint"`
	TokenEndpoint string          `json:"token_endpoint,omitempty"`
	ClientID      string          `json:"client_id"`
	ClientSecret  string          `json:"client_secret"`
	RefreshToken  string          `json:"refresh_token,omitempty"`
	PageSize      int             `json:"page_size,omitempty"`
	MaxRetries    int             `json:"max_retries,omitempty"`
	Timeout       models.Duration `json:"timeout,omitempty"`
}

// Config is the service configuration for one sync deployment.
type Config struct {
	CachePath      string               `json:"cache_path"`
	DryRun         bool                 `json:"dry_run"`
	Source         APIConfig            `json:"source"`
	Target         APIConfig            `json:"target"`
	RateLimit      ratelimit.Config     `json:"rate_limit,omitempty"`
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.CachePath == "" {
		return errCacheRequired
	}

	if c.Source.Endpoint == "" || c.Source.ClientID == "" || c.Source.ClientSecret == "" {
		return fmt.Errorf("%w: endpoint, client_id, and client_secret must be set", errSourceRequired)
	}

	if c.Target.Endpoint == "" || c.Target.ClientID == "" ||
		c.Target.ClientSecret == "" || c.Target.RefreshToken == "" {
		return fmt.Errorf("%w: endpoint, client_id, client_secret, and refresh_token must be set",
			errTargetRequired)
	}

	if c.Source.PageSize <= 0 {
		c.Source.PageSize = defaultPageSize
	}

	if c.Target.PageSize <= 0 {
		c.Target.PageSize = defaultPageSize
	}

	if c.CircuitBreaker.FailureThreshold == 0 {
		c.CircuitBreaker = DefaultCircuitBreakerConfig()
	}

	return nil
}
