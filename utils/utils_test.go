package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Angebot Müller.pdf", "angebot_muller.pdf"},
		{"Résumé Façade.PDF", "resume_facade.pdf"},
		{"Rechnung (final) #2.xlsx", "rechnung_final_2.xlsx"},
		{"plain.txt", "plain.txt"},
		{"???", "datei"},
		{"", "datei"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeFileNameCapsLengthKeepingExtension(t *testing.T) {
	long := strings.Repeat("a", 80) + ".pdf"

	got := SanitizeFileName(long)

	assert.LessOrEqual(t, len(got), 60)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 118.99, Round2(118.9881), 0.0001)
	assert.InDelta(t, 107.10, Round2(107.1), 0.0001)
	assert.InDelta(t, 0.0, Round2(0.004), 0.0001)
	assert.InDelta(t, -2.35, Round2(-2.345), 0.01)
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr, err := GenerateJWT("user-1")
	require.NoError(t, err)

	token, err := ValidateJWT(tokenStr)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims["sub"])
}

func TestValidateJWTRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr, err := GenerateJWT("user-1")
	require.NoError(t, err)

	_, err = ValidateJWT(tokenStr + "x")
	assert.Error(t, err)
}
