package service

import (
	"context"
	"errors"
	"strings"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"
	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/repository"

	"github.com/rs/zerolog/log"
)

const msgNoEncontrado = "biciusuario no encontrado"

type PerfilService interface {
	Listar(ctx context.Context) ([]dto.PerfilResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.PerfilResponse, error)
	// Actualizar reconciles the patch with the stored profile in a single
	// transaction and returns the reloaded aggregate.
	Actualizar(ctx context.Context, id uint, req dto.ActualizarPerfilRequest) (*dto.PerfilResponse, error)
	// Eliminar reports false when no profile had that id.
	Eliminar(ctx context.Context, id uint) (bool, error)
}

type perfilService struct {
	repo       repository.BiciusuarioRepository
	bcryptCost int
}

func NewPerfilService(repo repository.BiciusuarioRepository, bcryptCost int) PerfilService {
	return &perfilService{repo: repo, bcryptCost: bcryptCost}
}

func (s *perfilService) Listar(ctx context.Context) ([]dto.PerfilResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.NewInternal(err)
	}
	resp := make([]dto.PerfilResponse, len(users))
	for i := range users {
		resp[i] = Serializar(&users[i])
	}
	return resp, nil
}

func (s *perfilService) ObtenerPorID(ctx context.Context, id uint) (*dto.PerfilResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := Serializar(u)
	return &resp, nil
}

func (s *perfilService) Actualizar(ctx context.Context, id uint, req dto.ActualizarPerfilRequest) (*dto.PerfilResponse, error) {
	if req.Empty() {
		return nil, apierror.NewValidationErr("no hay campos para actualizar")
	}
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		return nil, apierror.NewValidationErr("displayName no puede estar vacio")
	}

	var hash string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, apierror.NewValidationErr("password no puede estar vacio")
		}
		h, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	err := s.repo.Transaction(ctx, func(tx repository.BiciusuarioRepository) error {
		u, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		reconciliar(u, req)
		if hash != "" {
			u.PasswordHash = hash
		}
		return tx.Guardar(ctx, u)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	log.Info().Uint("user_id", id).
		Int("bicicletas", len(u.Bicicletas)).
		Int("registros", len(u.Registros)).
		Msg("perfil actualizado")
	resp := Serializar(u)
	return &resp, nil
}

func (s *perfilService) Eliminar(ctx context.Context, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, apierror.NewInternal(err)
	}
	if ok {
		log.Info().Uint("user_id", id).Msg("biciusuario eliminado")
	}
	return ok, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NewNotFound(msgNoEncontrado)
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.NewConflict("el serial ya pertenece a otro biciusuario", err)
	default:
		return apierror.NewInternal(err)
	}
}
