package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Rol      string `json:"rol"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}

// UsuarioSeed is used by the CLI to create or refresh a till operator.
type UsuarioSeed struct {
	Username string  `validate:"required,min=1"`
	Nombre   string  `validate:"required"`
	Email    *string `validate:"omitempty,email"`
	Password string  `validate:"required,min=4"`
	Rol      string  `validate:"required,oneof=recepcion administrador"`
}
