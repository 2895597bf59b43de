package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// RegistroRequest creates a user and its biciusuario profile. Bicycles and
// registrations are optional and persisted in the same transaction.
type RegistroRequest struct {
	Username      string           `json:"username"      validate:"required,max=50"`
	Password      string           `json:"password"      validate:"required,max=72"`
	DisplayName   string           `json:"displayName"   validate:"required,max=255"`
	Bicycles      []BicicletaInput `json:"bicycles"      validate:"omitempty,dive"`
	Registrations []RegistroInput  `json:"registrations" validate:"omitempty,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}
