package service

import (
	"context"
	"errors"
	"strings"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"
	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/model"
	"github.com/DavidJaure/CRUDapiDB/internal/repository"
	"github.com/DavidJaure/CRUDapiDB/internal/security"

	"github.com/rs/zerolog/log"
)

const tokenType = "bearer"

type AuthService interface {
	Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.PerfilResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	repo       repository.BiciusuarioRepository
	tokens     *security.TokenManager
	bcryptCost int
}

func NewAuthService(repo repository.BiciusuarioRepository, tokens *security.TokenManager, bcryptCost int) AuthService {
	return &authService{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *authService) Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.PerfilResponse, error) {
	username := strings.TrimSpace(req.Username)
	nombre := strings.TrimSpace(req.DisplayName)
	if username == "" || strings.TrimSpace(req.Password) == "" || nombre == "" {
		return nil, apierror.NewValidationErr("username, password y displayName son obligatorios")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apierror.NewConflict("el username ya existe", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NewInternal(err)
	}

	hash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.Biciusuario{Username: username, PasswordHash: hash, Nombre: nombre}
	reconciliar(user, dto.ActualizarPerfilRequest{
		Bicycles:      req.Bicycles,
		Registrations: req.Registrations,
	})

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierror.NewConflict("el username o un serial de bicicleta ya esta registrado", err)
		}
		return nil, apierror.NewInternal(err)
	}

	log.Info().Uint("user_id", user.ID).Str("username", user.Username).
		Int("bicicletas", len(user.Bicicletas)).Msg("biciusuario registrado")
	resp := Serializar(user)
	return &resp, nil
}

// hashPassword reports an over-long password as a validation failure.
func hashPassword(password string, cost int) (string, error) {
	hash, err := security.HashPassword(password, cost)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", apierror.NewValidationErr("password no puede exceder 72 bytes")
	}
	if err != nil {
		return "", apierror.NewInternal(err)
	}
	return hash, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn().Str("username", req.Username).Msg("login fallido")
			return nil, apierror.NewInvalidCredentials()
		}
		return nil, apierror.NewInternal(err)
	}

	ok, err := security.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, apierror.NewInternal(err)
	}
	if !ok {
		log.Warn().Str("username", req.Username).Msg("login fallido")
		return nil, apierror.NewInvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apierror.NewInternal(err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}
