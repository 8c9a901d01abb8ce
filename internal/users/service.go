package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
	"github.com/vitrinebr/loja-api/pkg/types"
)

const maxNameLength = 120

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params, role *enums.UserRole) ([]models.User, string, error)
}

// Service covers the account profile and the back-office user screens.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error)
	List(ctx context.Context, params pagination.Params, role *enums.UserRole) ([]models.User, string, error)
	ChangeRole(ctx context.Context, actorID, id uuid.UUID, role enums.UserRole) (*models.User, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load user")
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	clean, err := normalizeProfile(update)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, id, clean); err != nil {
		return nil, mapError(err, "update profile")
	}
	return s.Get(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, role *enums.UserRole) ([]models.User, string, error) {
	if role != nil && !role.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	rows, next, err := s.repo.List(ctx, params, role)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return rows, next, nil
}

// ChangeRole promotes or demotes an account. Admins cannot demote themselves,
// which keeps at least the acting admin in place.
func (s *service) ChangeRole(ctx context.Context, actorID, id uuid.UUID, role enums.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithDetails(map[string]any{"role": role})
	}
	if actorID == id && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "admins cannot demote themselves")
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, mapError(err, "update role")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeConflict, "admins cannot delete their own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err, "delete user")
	}
	return nil
}

func normalizeProfile(update ProfileUpdate) (ProfileUpdate, error) {
	details := map[string]any{}
	out := ProfileUpdate{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			details["name"] = fmt.Sprintf("must have between 1 and %d characters", maxNameLength)
		}
		out.Name = &name
	}
	if update.CPF != nil {
		cpf := types.NormalizeCPF(*update.CPF)
		if !types.ValidCPF(cpf) {
			details["cpf"] = "is invalid"
		}
		out.CPF = &cpf
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		out.Phone = &phone
	}
	if len(details) > 0 {
		return ProfileUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile").WithDetails(details)
	}
	return out, nil
}

func mapError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
