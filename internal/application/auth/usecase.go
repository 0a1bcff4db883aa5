// Package auth emite el token de acceso del titular de la instalación.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

const ownerSubject = "owner"

// AuthUseCase verifica la contraseña del titular (hash bcrypt) y emite un JWT.
type AuthUseCase struct {
	ownerHash []byte
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso. ownerHash vacío deja el login deshabilitado.
func NewAuthUseCase(ownerHash string, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{ownerHash: []byte(ownerHash), jwtCfg: jwtCfg}
}

// Login compara la contraseña con el hash y devuelve el token.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.TokenResponse, error) {
	if len(uc.ownerHash) == 0 || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(uc.ownerHash, []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, ownerSubject, jwt.ScopeOwner, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("auth: firmar token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   uc.jwtCfg.ExpMinutes * 60,
	}, nil
}

// HashPassword genera el hash bcrypt para AUTH_OWNER_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
