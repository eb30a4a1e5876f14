package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"

	"github.com/aretw0/campusmate/pkg/adapters/memory"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func finished(id string) *domain.Session {
	s := domain.NewSession(id, "alice", "我的学号是 2024001，帮我记一下")
	s.Status = domain.StatusCompleted
	s.FinalAnswer = "学姐记住啦"
	s.Metadata["channel"] = "cli"
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	original := finished("session_alice_abc123")
	require.NoError(t, secure.Save(ctx, original))

	stored, err := underlying.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Query)
	assert.Empty(t, stored.FinalAnswer)
	assert.NotContains(t, stored.Metadata, "channel")
	assert.Contains(t, stored.Metadata, middleware.EnvelopeKey)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, "alice", stored.UserID)

	loaded, err := secure.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.Query, loaded.Query)
	assert.Equal(t, original.FinalAnswer, loaded.FinalAnswer)
	assert.Equal(t, "cli", loaded.Metadata["channel"])

	ids, err := secure.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{original.ID}, ids)

	require.NoError(t, secure.Delete(ctx, original.ID))
	_, err = secure.Load(ctx, original.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	ctx := context.Background()
	s := finished("rotation")
	require.NoError(t, secureOld.Save(ctx, s))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.FinalAnswer, loaded.FinalAnswer)

	loaded.FinalAnswer = "sealed with the new key"
	require.NoError(t, secureNew.Save(ctx, loaded))

	_, err = secureOld.Load(ctx, s.ID)
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainSessions(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), finished("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"hex", hex.EncodeToString(key), false},
		{"base64", base64.StdEncoding.EncodeToString(key), false},
		{"too short", hex.EncodeToString(key[:16]), true},
		{"garbage", "not a key", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := middleware.ParseKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, key, got)
		})
	}
}
