// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pool manages a pool of persistence sessions — the connections a
// PersistencePort implementation backed by a real store opens against it —
// keyed by backend name, with idle cleanup and an optional health check.
// The in-memory reference Port (internal/persistence.MemoryStore) has no
// use for this; it exists for a future real-store implementation that
// needs to avoid re-dialing on every call.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdss-manga/scheduler/pkg/logging"
)

// Session is a single open connection to a persistence backend. Whatever
// opens one (a SQL driver's *sql.Conn, a catalog-service RPC channel) must
// satisfy this to be pool-managed.
type Session interface {
	Close() error
}

// DialFunc opens a new Session against the named backend.
type DialFunc func(ctx context.Context, backend string) (Session, error)

// SessionPool manages pooled sessions, one live session per backend name.
type SessionPool struct {
	mu       sync.RWMutex
	sessions map[string]*pooledSession
	dial     DialFunc
	config   *PoolConfig
	logger   logging.Logger
}

// pooledSession wraps a Session with usage statistics.
type pooledSession struct {
	session  Session
	created  time.Time
	lastUsed time.Time
	useCount int64
}

// PoolConfig holds configuration for the session pool.
type PoolConfig struct {
	// IdleSessionTimeout is how long an unused session may sit before
	// CleanupIdleSessions reclaims it.
	IdleSessionTimeout time.Duration

	// DialTimeout bounds how long a single DialFunc call may take.
	DialTimeout time.Duration
}

// DefaultPoolConfig returns a pool configuration with conservative
// defaults suitable for a single-backend deployment.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		IdleSessionTimeout: 15 * time.Minute,
		DialTimeout:        10 * time.Second,
	}
}

// NewSessionPool creates a new session pool backed by dial.
func NewSessionPool(dial DialFunc, config *PoolConfig, logger logging.Logger) *SessionPool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &SessionPool{
		sessions: make(map[string]*pooledSession),
		dial:     dial,
		config:   config,
		logger:   logger,
	}
}

// GetSession returns the pooled session for backend, dialing a new one if
// none exists yet.
func (p *SessionPool) GetSession(ctx context.Context, backend string) (Session, error) {
	p.mu.RLock()
	ps, exists := p.sessions[backend]
	p.mu.RUnlock()

	if exists {
		p.mu.Lock()
		ps.lastUsed = time.Now()
		ps.useCount++
		p.mu.Unlock()
		return ps.session, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock.
	if ps, exists := p.sessions[backend]; exists {
		ps.lastUsed = time.Now()
		ps.useCount++
		return ps.session, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.config.DialTimeout)
	defer cancel()

	session, err := p.dial(dialCtx, backend)
	if err != nil {
		return nil, fmt.Errorf("dial backend %q: %w", backend, err)
	}

	p.sessions[backend] = &pooledSession{
		session:  session,
		created:  time.Now(),
		lastUsed: time.Now(),
		useCount: 1,
	}
	p.logger.Info("opened new persistence session", "backend", backend)

	return session, nil
}

// Stats returns statistics about the session pool.
func (p *SessionPool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := PoolStats{
		TotalSessions: len(p.sessions),
		SessionStats:  make(map[string]SessionStats),
	}
	for backend, ps := range p.sessions {
		stats.SessionStats[backend] = SessionStats{
			Created:  ps.created,
			LastUsed: ps.lastUsed,
			UseCount: ps.useCount,
		}
	}
	return stats
}

// CleanupIdleSessions closes and removes sessions unused for at least
// maxIdleTime, returning the number removed.
func (p *SessionPool) CleanupIdleSessions(maxIdleTime time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdleTime)

	for backend, ps := range p.sessions {
		if ps.lastUsed.Before(cutoff) {
			_ = ps.session.Close()
			delete(p.sessions, backend)
			removed++
			p.logger.Info("closed idle persistence session",
				"backend", backend,
				"idle_duration", time.Since(ps.lastUsed),
			)
		}
	}
	return removed
}

// Close closes every session in the pool.
func (p *SessionPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for backend, ps := range p.sessions {
		if err := ps.session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.sessions, backend)
	}
	p.logger.Info("closed all persistence sessions in pool")
	return firstErr
}

// PoolStats contains statistics about the session pool.
type PoolStats struct {
	TotalSessions int
	SessionStats  map[string]SessionStats
}

// SessionStats contains statistics for a single pooled session.
type SessionStats struct {
	Created  time.Time
	LastUsed time.Time
	UseCount int64
}

// HealthCheckFunc reports whether the session for backend is still usable.
type HealthCheckFunc func(ctx context.Context, backend string, session Session) error

// ConnectionManager runs periodic idle cleanup and, if configured, health
// checks over a SessionPool.
type ConnectionManager struct {
	pool            *SessionPool
	healthCheckFunc HealthCheckFunc
	cleanupInterval time.Duration
	maxIdleTime     time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	logger          logging.Logger
}

// NewConnectionManager creates a connection manager over pool.
func NewConnectionManager(pool *SessionPool, healthCheck HealthCheckFunc, logger logging.Logger) *ConnectionManager {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &ConnectionManager{
		pool:            pool,
		healthCheckFunc: healthCheck,
		cleanupInterval: 5 * time.Minute,
		maxIdleTime:     pool.config.IdleSessionTimeout,
		ctx:             ctx,
		cancel:          cancel,
		logger:          logger,
	}
}

// Start begins the background cleanup routine.
func (cm *ConnectionManager) Start() {
	cm.wg.Add(1)
	go cm.cleanupRoutine()
}

// Stop halts the background cleanup routine and waits for it to exit.
func (cm *ConnectionManager) Stop() {
	cm.cancel()
	cm.wg.Wait()
}

func (cm *ConnectionManager) cleanupRoutine() {
	defer cm.wg.Done()

	ticker := time.NewTicker(cm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := cm.pool.CleanupIdleSessions(cm.maxIdleTime); removed > 0 {
				cm.logger.Info("cleaned up idle sessions", "removed", removed)
			}
		case <-cm.ctx.Done():
			return
		}
	}
}

// GetHealthySession returns a session for backend, failing if the
// configured health check rejects it.
func (cm *ConnectionManager) GetHealthySession(ctx context.Context, backend string) (Session, error) {
	session, err := cm.pool.GetSession(ctx, backend)
	if err != nil {
		return nil, err
	}

	if cm.healthCheckFunc != nil {
		if err := cm.healthCheckFunc(ctx, backend, session); err != nil {
			return nil, fmt.Errorf("backend %q health check failed: %w", backend, err)
		}
	}
	return session, nil
}
