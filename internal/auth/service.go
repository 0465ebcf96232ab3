package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/pixfunnel-backend/pkg/auth"
	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/security"
)

const invalidCredentialsMessage = "Senha inválida"

// Service authenticates the single admin account.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type service struct {
	passwordHash string
	jwtCfg       config.JWTConfig
	now          func() time.Time
}

// NewService builds the admin login service from the stored argon2id hash.
func NewService(adminCfg config.AdminConfig, jwtCfg config.JWTConfig) (Service, error) {
	hash := strings.TrimSpace(adminCfg.PasswordHash)
	if hash == "" {
		return nil, fmt.Errorf("admin password hash is required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &service{passwordHash: hash, jwtCfg: jwtCfg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	ok, err := security.VerifyPassword(req.Password, s.passwordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, expiresAt, err := pkgAuth.MintAdminToken(s.jwtCfg, s.now(), pkgAuth.ScopeAdmin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}
	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}
