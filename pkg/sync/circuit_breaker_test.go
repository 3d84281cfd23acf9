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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
)

var errTestUpstream = errors.New("upstream error")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	config := CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          models.Duration(50 * time.Millisecond),
		ResetTimeout:     models.Duration(200 * time.Millisecond),
	}

	cb := NewCircuitBreaker("test", config, logger.NewTestLogger())

	assert.Equal(t, StateClosed, cb.GetState())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())

	require.Error(t, cb.Execute(func() error { return errTestUpstream }))
	assert.Equal(t, StateClosed, cb.GetState())

	require.Error(t, cb.Execute(func() error { return errTestUpstream }))
	assert.Equal(t, StateOpen, cb.GetState())

	// Calls are rejected while open, without invoking the function.
	err := cb.Execute(func() error {
		t.Fatal("function must not run while the circuit is open")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker test is open")
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	config := CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          models.Duration(30 * time.Millisecond),
		ResetTimeout:     models.Duration(200 * time.Millisecond),
	}

	cb := NewCircuitBreaker("test", config, logger.NewTestLogger())

	require.Error(t, cb.Execute(func() error { return errTestUpstream }))
	require.Equal(t, StateOpen, cb.GetState())

	// After the timeout the breaker probes in half-open and closes on
	// the first success. Retried because timing is wall-clock based.
	var recovered bool

	for i := 0; i < 10; i++ {
		time.Sleep(15 * time.Millisecond)

		if cb.Execute(func() error { return nil }) == nil && cb.GetState() == StateClosed {
			recovered = true
			break
		}
	}

	assert.True(t, recovered, "breaker should close again after a successful probe")
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	config := DefaultCircuitBreakerConfig()

	assert.Equal(t, 5, config.FailureThreshold)
	assert.Equal(t, 2, config.SuccessThreshold)
	assert.Equal(t, models.Duration(30*time.Second), config.Timeout)
	assert.Equal(t, models.Duration(60*time.Second), config.ResetTimeout)
}

func TestCircuitBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

func TestCircuitBreakerHTTPClient_ServerErrorsCountAsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	config := CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          models.Duration(time.Minute),
		ResetTimeout:     models.Duration(time.Minute),
	}

	client := NewCircuitBreakerHTTPClient(srv.Client(), "test-http", config, logger.NewTestLogger())

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL, http.NoBody)
		require.NoError(t, err)

		_, err = client.Do(req)
		require.Error(t, err)
	}

	assert.Equal(t, StateOpen, client.GetCircuitBreaker().GetState())
}
