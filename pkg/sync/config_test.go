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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		CachePath: "/var/lib/assetsync/cache.db",
		Source: APIConfig{
			Endpoint:     "https://rmm.example.com",
			ClientID:     "src-id",
			ClientSecret: "src-secret",
		},
		Target: APIConfig{
			Endpoint:     "https://sdp.example.com",
			ClientID:     "tgt-id",
			ClientSecret: "tgt-secret",
			RefreshToken: "tgt-refresh",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	// Defaults are filled in.
	assert.Equal(t, defaultPageSize, cfg.Source.PageSize)
	assert.Equal(t, defaultPageSize, cfg.Target.PageSize)
	assert.Equal(t, DefaultCircuitBreakerConfig(), cfg.CircuitBreaker)
}

func TestConfigValidate_MissingCachePath(t *testing.T) {
	cfg := validConfig()
	cfg.CachePath = ""

	assert.ErrorIs(t, cfg.Validate(), errCacheRequired)
}

func TestConfigValidate_MissingSourceCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Source.ClientSecret = ""

	assert.ErrorIs(t, cfg.Validate(), errSourceRequired)
}

func TestConfigValidate_MissingTargetRefreshToken(t *testing.T) {
	cfg := validConfig()
	cfg.Target.RefreshToken = ""

	assert.ErrorIs(t, cfg.Validate(), errTargetRequired)
}
