package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// BicicletaInput is one bicycle entry of a create or update payload. Serial is
// the correlation key; entries without it are ignored. Nil fields are left
// unchanged on update.
type BicicletaInput struct {
	Serial string  `json:"serial" validate:"max=50"`
	Marca  *string `json:"marca"  validate:"omitempty,max=100"`
	Modelo *string `json:"modelo" validate:"omitempty,max=100"`
	Color  *string `json:"color"  validate:"omitempty,max=50"`
}

type RegistroInput struct {
	Serial string `json:"serial" validate:"max=50"`
}

// ActualizarPerfilRequest is the partial patch accepted by PUT /biciusuarios/:id.
type ActualizarPerfilRequest struct {
	DisplayName   *string          `json:"displayName"   validate:"omitempty,min=1,max=255"`
	Password      *string          `json:"password"      validate:"omitempty,min=1,max=72"`
	Bicycles      []BicicletaInput `json:"bicycles"      validate:"omitempty,dive"`
	Registrations []RegistroInput  `json:"registrations" validate:"omitempty,dive"`
}

// Empty reports whether the patch carries no field at all.
func (r ActualizarPerfilRequest) Empty() bool {
	return r.DisplayName == nil && r.Password == nil && r.Bicycles == nil && r.Registrations == nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────
// PerfilResponse is the only outward representation of a Biciusuario. It has
// no password field by construction.

type BicicletaResponse struct {
	ID     uint    `json:"id"`
	Serial string  `json:"serial"`
	Marca  *string `json:"marca"`
	Modelo *string `json:"modelo"`
	Color  *string `json:"color"`
}

type RegistroResponse struct {
	ID          uint   `json:"id"`
	Serial      string `json:"serial"`
	DisplayName string `json:"displayName"`
}

type PerfilResponse struct {
	ID            uint                `json:"id"`
	Username      string              `json:"username"`
	DisplayName   string              `json:"displayName"`
	Bicycles      []BicicletaResponse `json:"bicycles"`
	Registrations []RegistroResponse  `json:"registrations"`
}

type MensajeResponse struct {
	Message string `json:"message"`
}
