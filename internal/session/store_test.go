// internal/session/store_test.go
package session

import (
	"context"
	"testing"
	"time"

	"symptom-pipeline/internal/common/database"
	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(database.NewRedisFromClient(client), time.Hour, logger.NewNop())
	return store, mr
}

func statusPtr(s models.Status) *models.Status { return &s }
func intPtr(i int) *int                        { return &i }

// ==========================
// Session ID / Fingerprint Tests
// ==========================

func TestNewSessionID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		assert.Regexp(t, `^session_[0-9a-f]{16}$`, id)
		assert.False(t, seen[id], "duplicate session id generated")
		seen[id] = true
	}
}

func TestFingerprint_Normalization(t *testing.T) {
	base := Fingerprint("persistent fatigue and dizziness")

	assert.Equal(t, base, Fingerprint("  Persistent Fatigue and Dizziness  "))
	assert.Equal(t, base, Fingerprint("PERSISTENT FATIGUE AND DIZZINESS"))
	assert.NotEqual(t, base, Fingerprint("persistent fatigue"))
	assert.Len(t, base, 16)
}

// ==========================
// Store Tests
// ==========================

func TestStore_CreateAndGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInitializing, sess.Status)
	assert.Equal(t, 0, sess.Progress)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, models.StatusInitializing, got.Status)
}

func TestStore_GetUnknownSession(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "session_deadbeefdeadbeef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_UpdateMergesFields(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	_, err = store.Update(ctx, sess.ID, models.SessionUpdate{
		Status:   statusPtr(models.StatusSanitizing),
		Progress: intPtr(10),
	})
	require.NoError(t, err)

	// A later partial update must not clobber earlier fields.
	updated, err := store.Update(ctx, sess.ID, models.SessionUpdate{
		Progress: intPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSanitizing, updated.Status)
	assert.Equal(t, 20, updated.Progress)
}

func TestStore_UpdateStoresResult(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	result := &models.AnalysisResult{
		Conditions: []models.ConditionResult{
			{Name: "Anemia", Probability: 0.7, Confidence: 0.85, Urgency: models.UrgencyRoutine},
		},
		Clinics: []models.ClinicResult{},
	}

	_, err = store.Update(ctx, sess.ID, models.SessionUpdate{
		Status:   statusPtr(models.StatusCompleted),
		Progress: intPtr(100),
		Result:   result,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	require.Len(t, got.Result.Conditions, 1)
	assert.Equal(t, "Anemia", got.Result.Conditions[0].Name)
}

func TestStore_UpdateUnknownSession(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Update(context.Background(), "session_0000000000000000", models.SessionUpdate{
		Progress: intPtr(50),
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_SessionExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(database.NewRedisFromClient(client), time.Minute, logger.NewNop())
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_UpdateTouchesExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(database.NewRedisFromClient(client), time.Minute, logger.NewNop())
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	// Updating 45s in keeps the session alive past the original deadline.
	mr.FastForward(45 * time.Second)
	_, err = store.Update(ctx, sess.ID, models.SessionUpdate{Progress: intPtr(40)})
	require.NoError(t, err)

	mr.FastForward(45 * time.Second)
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
}

func TestStore_GetRedisErrorIsNotNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(database.NewRedisFromClient(client), time.Hour, logger.NewNop())

	mock.ExpectGet("session:session_0000000000000000").SetErr(assert.AnError)

	_, err := store.Get(context.Background(), "session_0000000000000000")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Fingerprint Cache Tests
// ==========================

func TestStore_FingerprintCacheRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	fp := Fingerprint("recurring migraines with aura")
	result := &models.AnalysisResult{
		Conditions: []models.ConditionResult{
			{Name: "Migraine", Probability: 0.8, Confidence: 0.85, Urgency: models.UrgencyRoutine},
		},
		Clinics: []models.ClinicResult{},
	}

	store.CacheResult(ctx, fp, result)

	cached, ok := store.CachedResult(ctx, fp)
	require.True(t, ok)
	require.Len(t, cached.Conditions, 1)
	assert.Equal(t, "Migraine", cached.Conditions[0].Name)
}

func TestStore_FingerprintCacheMiss(t *testing.T) {
	store, _ := setupStore(t)

	_, ok := store.CachedResult(context.Background(), Fingerprint("never seen before"))
	assert.False(t, ok)
}

func TestStore_FingerprintCacheCorruptEntry(t *testing.T) {
	store, mr := setupStore(t)

	fp := Fingerprint("some symptoms")
	require.NoError(t, mr.Set("fingerprint:"+fp, "not-json"))

	_, ok := store.CachedResult(context.Background(), fp)
	assert.False(t, ok)
}

func TestStore_FingerprintCacheSurvivesSessionExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	fp := Fingerprint("chronic joint pain")
	store.CacheResult(ctx, fp, &models.AnalysisResult{Conditions: []models.ConditionResult{}, Clinics: []models.ClinicResult{}})

	mr.FastForward(3 * time.Hour)

	_, ok := store.CachedResult(ctx, fp)
	assert.True(t, ok)
}
