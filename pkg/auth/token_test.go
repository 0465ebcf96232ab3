package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "pixfunnel", ExpirationMinutes: 30}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, expiresAt, err := MintAdminToken(cfg, now, "")
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(30*time.Minute), expiresAt, time.Second)

	claims, err := ParseAdminToken(cfg, token)
	require.NoError(t, err)
	require.Equal(t, ScopeAdmin, claims.Scope)
	require.Equal(t, ScopeAdmin, claims.Subject)
	require.NotEmpty(t, claims.ID)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour), "admin")
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseAdminTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAdminToken(cfg, time.Now(), "admin")
	require.NoError(t, err)

	other := cfg
	other.Secret = "other"
	_, err = ParseAdminToken(other, token)
	require.Error(t, err)

	other = cfg
	other.Issuer = "someone-else"
	_, err = ParseAdminToken(other, token)
	require.Error(t, err)
}

func TestParseAdminTokenRejectsForeignScope(t *testing.T) {
	cfg := testJWTConfig()
	claims := AdminClaims{
		Scope: "storefront",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, token)
	require.Error(t, err)
}

func TestMintAdminTokenValidatesConfig(t *testing.T) {
	_, _, err := MintAdminToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 1}, time.Now(), "admin")
	require.Error(t, err)

	_, _, err = MintAdminToken(config.JWTConfig{Secret: "s", Issuer: "x"}, time.Now(), "admin")
	require.Error(t, err)
}
