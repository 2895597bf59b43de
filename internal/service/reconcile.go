package service

import (
	"strings"

	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/model"
)

// reconciliar applies the patch to the in-memory aggregate. Owned children are
// correlated by serial: a match is updated in place, anything else is appended
// to the owner's collection. Children missing from the patch stay untouched,
// so applying the same patch twice leaves the same state.
func reconciliar(u *model.Biciusuario, req dto.ActualizarPerfilRequest) {
	renombrado := false
	if req.DisplayName != nil {
		nombre := strings.TrimSpace(*req.DisplayName)
		if nombre != u.Nombre {
			u.Nombre = nombre
			renombrado = true
		}
	}

	for _, in := range req.Bicycles {
		serial := strings.TrimSpace(in.Serial)
		if serial == "" {
			continue
		}
		if b := u.BicicletaPorSerial(serial); b != nil {
			if in.Marca != nil {
				b.Marca = in.Marca
			}
			if in.Modelo != nil {
				b.Modelo = in.Modelo
			}
			if in.Color != nil {
				b.Color = in.Color
			}
			continue
		}
		u.Bicicletas = append(u.Bicicletas, model.Bicicleta{
			BiciusuarioID: u.ID,
			Serial:        serial,
			Marca:         in.Marca,
			Modelo:        in.Modelo,
			Color:         in.Color,
		})
	}

	for _, in := range req.Registrations {
		serial := strings.TrimSpace(in.Serial)
		if serial == "" {
			continue
		}
		if r := u.RegistroPorSerial(serial); r != nil {
			r.NombreCopia = u.Nombre
			continue
		}
		u.Registros = append(u.Registros, model.RegistroBiciusuario{
			BiciusuarioID: u.ID,
			Serial:        serial,
			NombreCopia:   u.Nombre,
		})
	}

	// The copy is denormalized: a rename re-stamps every owned registration.
	if renombrado {
		for i := range u.Registros {
			u.Registros[i].NombreCopia = u.Nombre
		}
	}
}

// Serializar builds the public representation of a profile, the only one
// handlers ever return. Collections are never nil so they encode as [].
func Serializar(u *model.Biciusuario) dto.PerfilResponse {
	resp := dto.PerfilResponse{
		ID:            u.ID,
		Username:      u.Username,
		DisplayName:   u.Nombre,
		Bicycles:      make([]dto.BicicletaResponse, 0, len(u.Bicicletas)),
		Registrations: make([]dto.RegistroResponse, 0, len(u.Registros)),
	}
	for _, b := range u.Bicicletas {
		resp.Bicycles = append(resp.Bicycles, dto.BicicletaResponse{
			ID: b.ID, Serial: b.Serial, Marca: b.Marca, Modelo: b.Modelo, Color: b.Color,
		})
	}
	for _, r := range u.Registros {
		resp.Registrations = append(resp.Registrations, dto.RegistroResponse{
			ID: r.ID, Serial: r.Serial, DisplayName: r.NombreCopia,
		})
	}
	return resp
}
