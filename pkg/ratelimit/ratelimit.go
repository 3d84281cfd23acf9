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

// Package ratelimit paces outbound calls to an upstream API that throttles
// aggressively and unpredictably. The limiter adapts: sustained success
// shortens the interval between calls, throttling responses lengthen it.
// A limiter belongs to exactly one client session and is not meant to be
// shared across parallel fetch streams.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	defaultBaseInterval  = 500 * time.Millisecond
	defaultMinInterval   = 200 * time.Millisecond
	defaultMaxInterval   = 2 * time.Minute
	defaultBackoffFactor = 2.0
	defaultSpeedupFactor = 0.9
	defaultErrorFactor   = 1.5
	defaultSuccessStreak = 5
)

// Config tunes the adaptive pacing behavior. Zero values fall back to the
// defaults, which are calibrated against the monitoring platform's
// observed throttling behavior.
type Config struct {
	// BaseInterval is the starting gap between calls.
	BaseInterval time.Duration `json:"base_interval"`

	// MinInterval caps how short the interval can get under sustained
	// success.
	MinInterval time.Duration `json:"min_interval"`

	// MaxInterval caps how long the interval can get under backoff.
	MaxInterval time.Duration `json:"max_interval"`

	// BackoffFactor (>1) multiplies the interval on an explicit
	// rate-limit response without a Retry-After hint.
	BackoffFactor float64 `json:"backoff_factor"`

	// SpeedupFactor (<1) multiplies the interval after a success streak.
	SpeedupFactor float64 `json:"speedup_factor"`

	// ErrorFactor (>1, gentler than BackoffFactor) multiplies the
	// interval on non-throttling upstream errors.
	ErrorFactor float64 `json:"error_factor"`

	// SuccessStreak is the number of consecutive successes required
	// before the interval is shortened.
	SuccessStreak int `json:"success_streak"`
}

func (c Config) withDefaults() Config {
	if c.BaseInterval <= 0 {
		c.BaseInterval = defaultBaseInterval
	}

	if c.MinInterval <= 0 {
		c.MinInterval = defaultMinInterval
	}

	if c.MaxInterval <= 0 {
		c.MaxInterval = defaultMaxInterval
	}

	if c.BackoffFactor <= 1 {
		c.BackoffFactor = defaultBackoffFactor
	}

	if c.SpeedupFactor <= 0 || c.SpeedupFactor >= 1 {
		c.SpeedupFactor = defaultSpeedupFactor
	}

	if c.ErrorFactor <= 1 {
		c.ErrorFactor = defaultErrorFactor
	}

	if c.SuccessStreak <= 0 {
		c.SuccessStreak = defaultSuccessStreak
	}

	return c
}

// Stats is a read-only snapshot of the limiter for progress reporting.
type Stats struct {
	TotalCalls      int64         `json:"total_calls"`
	RateLimitEvents int64         `json:"rate_limit_events"`
	CurrentInterval time.Duration `json:"current_interval"`
}

// Limiter implements adaptive request pacing. Wait blocks before a call;
// OnSuccess, OnRateLimited, and OnError feed the outcome back so the next
// interval can adapt.
type Limiter struct {
	config Config
	clock  Clock

	mu              sync.Mutex
	currentInterval time.Duration
	lastCall        time.Time
	successStreak   int
	totalCalls      int64
	rateLimitEvents int64
}

// New returns a Limiter paced by the wall clock.
func New(config Config) *Limiter {
	return NewWithClock(config, realClock{})
}

// NewWithClock returns a Limiter using the given clock. Tests inject a
// fake clock here.
func NewWithClock(config Config, clock Clock) *Limiter {
	cfg := config.withDefaults()

	return &Limiter{
		config:          cfg,
		clock:           clock,
		currentInterval: cfg.BaseInterval,
	}
}

// Wait blocks until at least the current interval has elapsed since the
// previous call, then records the call. It returns early with the
// context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()

	var sleep time.Duration

	if !l.lastCall.IsZero() {
		elapsed := l.clock.Now().Sub(l.lastCall)
		if elapsed < l.currentInterval {
			sleep = l.currentInterval - elapsed
		}
	}

	l.mu.Unlock()

	if sleep > 0 {
		if err := l.clock.Sleep(ctx, sleep); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.lastCall = l.clock.Now()
	l.totalCalls++
	l.mu.Unlock()

	return nil
}

// OnSuccess records a successful call. After SuccessStreak consecutive
// successes the interval is shortened by SpeedupFactor, floored at
// MinInterval.
func (l *Limiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successStreak++

	if l.successStreak < l.config.SuccessStreak {
		return
	}

	l.successStreak = 0

	faster := time.Duration(float64(l.currentInterval) * l.config.SpeedupFactor)
	if faster < l.config.MinInterval {
		faster = l.config.MinInterval
	}

	l.currentInterval = faster
}

// OnRateLimited records an explicit throttling response and blocks for
// the adjusted interval. When the upstream supplied a Retry-After hint
// the interval becomes that value (capped at MaxInterval); otherwise the
// interval is multiplied by BackoffFactor. Unlike Wait, this call sleeps
// immediately: the upstream has told us to go away, so we do.
func (l *Limiter) OnRateLimited(ctx context.Context, retryAfter time.Duration) error {
	l.mu.Lock()

	l.successStreak = 0
	l.rateLimitEvents++

	if retryAfter > 0 {
		l.currentInterval = retryAfter
	} else {
		l.currentInterval = time.Duration(float64(l.currentInterval) * l.config.BackoffFactor)
	}

	if l.currentInterval > l.config.MaxInterval {
		l.currentInterval = l.config.MaxInterval
	}

	sleep := l.currentInterval

	l.mu.Unlock()

	return l.clock.Sleep(ctx, sleep)
}

// OnError records a non-throttling upstream failure. The interval grows
// by the gentler ErrorFactor but no sleep is performed; the caller's
// retry loop decides when to call again.
func (l *Limiter) OnError() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successStreak = 0

	l.currentInterval = time.Duration(float64(l.currentInterval) * l.config.ErrorFactor)
	if l.currentInterval > l.config.MaxInterval {
		l.currentInterval = l.config.MaxInterval
	}
}

// Reset restores the base interval and zeroes all counters. Called
// between independent bulk operations so one operation's backoff does
// not bleed into the next.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentInterval = l.config.BaseInterval
	l.lastCall = time.Time{}
	l.successStreak = 0
	l.totalCalls = 0
	l.rateLimitEvents = 0
}

// Stats returns a snapshot of the limiter's counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		TotalCalls:      l.totalCalls,
		RateLimitEvents: l.rateLimitEvents,
		CurrentInterval: l.currentInterval,
	}
}
