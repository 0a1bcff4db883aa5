package dto

// LoginRequest entrada para POST /api/auth/token.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// TokenResponse respuesta con el JWT.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // segundos
}
