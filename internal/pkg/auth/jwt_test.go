package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testService(now *time.Time) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:   "test-secret",
		TokenTTL:    time.Hour,
		TokenIssuer: "gtostat",
	}).WithClock(func() time.Time { return *now })
}

func TestJWTService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := testService(&now)

	issued, err := svc.Generate("coach@university.ru")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "coach@university.ru", claims.Email)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestJWTService_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := testService(&now)

	issued, err := svc.Generate("coach@university.ru")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	now := time.Now()
	issued, err := testService(&now).Generate("coach@university.ru")
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another", TokenTTL: time.Hour})
	_, err = other.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Garbage(t *testing.T) {
	now := time.Now()
	svc := testService(&now)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestJWTService_DistinctIDs(t *testing.T) {
	now := time.Now()
	svc := testService(&now)

	a, err := svc.Generate("coach@university.ru")
	require.NoError(t, err)
	b, err := svc.Generate("coach@university.ru")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "abc", want: "abc"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
