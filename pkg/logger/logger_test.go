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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.False(t, log.Debug().Enabled())
	assert.True(t, log.Info().Enabled())
}

func TestNewDebugOverridesLevel(t *testing.T) {
	log, err := New(Config{Level: "warn", Debug: true})
	require.NoError(t, err)

	assert.True(t, log.Debug().Enabled())
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)

	log.SetLevel(zerolog.ErrorLevel)
	assert.False(t, log.Info().Enabled())
	assert.True(t, log.Error().Enabled())

	log.SetDebug(true)
	assert.True(t, log.Debug().Enabled())
}

func TestWithComponent(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)

	component := log.WithComponent("store")
	require.NotNil(t, component)
	assert.True(t, component.Info().Enabled())
}

func TestTestLoggerDiscardsEverything(t *testing.T) {
	log := NewTestLogger()

	assert.False(t, log.Info().Enabled())
	assert.False(t, log.WithComponent("x").Error().Enabled())
	assert.False(t, log.WithFields(map[string]interface{}{"k": "v"}).Warn().Enabled())
}
