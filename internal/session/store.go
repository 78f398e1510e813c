// Package session persists per-analysis state in Redis with a fixed TTL and
// keeps a best-effort fingerprint cache for repeat submissions.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"symptom-pipeline/internal/common/database"
	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	fingerprintKeyPrefix = "fingerprint:"
)

// ErrSessionNotFound is returned by Get for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Store is the Redis-backed session store. Every write refreshes the TTL so
// an active session never expires mid-run.
type Store struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		redis:  redis,
		ttl:    ttl,
		logger: log,
	}
}

// NewSessionID returns an opaque identifier of the form "session_" followed
// by 16 hex characters.
func NewSessionID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "session_" + raw[:16]
}

// Create stores a fresh session in the initializing state.
func (s *Store) Create(ctx context.Context) (*models.Session, error) {
	now := time.Now().UTC()
	sess := &models.Session{
		ID:        NewSessionID(),
		Status:    models.StatusInitializing,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Get returns the current session snapshot, or ErrSessionNotFound when the
// key is missing or expired.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.redis.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &sess, nil
}

// Update merges a delta into the stored session and touches the expiry.
func (s *Store) Update(ctx context.Context, sessionID string, update models.SessionUpdate) (*models.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		sess.Status = *update.Status
	}
	if update.Progress != nil {
		sess.Progress = *update.Progress
	}
	if update.Error != nil {
		sess.Error = *update.Error
	}
	if update.Result != nil {
		sess.Result = update.Result
	}
	sess.UpdatedAt = time.Now().UTC()

	if err := s.put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return sess, nil
}

func (s *Store) put(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl)
}

// ==========================
// Fingerprint cache
// ==========================

// Fingerprint normalizes sanitized text into a short cache key.
func Fingerprint(sanitizedText string) string {
	normalized := strings.ToLower(strings.TrimSpace(sanitizedText))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// CachedResult looks up a previously computed result by fingerprint. Lookups
// are best-effort; any store error is treated as a miss.
func (s *Store) CachedResult(ctx context.Context, fingerprint string) (*models.AnalysisResult, bool) {
	raw, err := s.redis.Get(ctx, fingerprintKeyPrefix+fingerprint)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("fingerprint cache lookup failed", map[string]interface{}{
				"fingerprint": fingerprint,
				"error":       err.Error(),
			})
		}
		return nil, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("fingerprint cache entry corrupt", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
		return nil, false
	}

	return &result, true
}

// CacheResult stores a completed result under a fingerprint. Failures are
// logged and swallowed; the cache only skips work, it never gates it.
func (s *Store) CacheResult(ctx context.Context, fingerprint string, result *models.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to encode cached result", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
		return
	}

	if err := s.redis.Set(ctx, fingerprintKeyPrefix+fingerprint, data, 0); err != nil {
		s.logger.Warn("failed to store cached result", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
	}
}
