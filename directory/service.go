// Package directory implements the user directory on top of the tenant
// session registry: user registration, removal, and the lookups that back
// token issuance and request authentication.
package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/qubeio/microbees/errors"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/model"
	"github.com/qubeio/microbees/tenant"
)

// CreateUserRequest is the registration payload. Field names follow the
// public API contract.
type CreateUserRequest struct {
	FirstName string `json:"name" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Email     string `json:"mailId" binding:"required,email,max=50"`
}

// LoginRequest is the token issuance payload.
type LoginRequest struct {
	FirstName string `json:"name" binding:"required"`
	Email     string `json:"mailId" binding:"required"`
}

// Service reads and writes user records through per-tenant sessions. Every
// operation is scoped to exactly one tenant namespace for its duration.
type Service struct {
	registry *tenant.Registry
	log      *logger.Logger
}

// NewService creates a user directory backed by the given registry.
func NewService(registry *tenant.Registry, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		log:      log.WithComponent("directory"),
	}
}

// Register stores a new user record in the tenant's namespace. A duplicate
// email within that namespace fails with a Duplicate error; the same email
// in a different tenant is unrelated.
func (s *Service) Register(ctx context.Context, tenantID string, req CreateUserRequest) (*model.User, error) {
	session, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := session.DB(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicate("user").WithCause(err)
		}
		s.log.Error("Failed to store user info", logger.ErrorFields("register", err))
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// DeleteByEmail removes the user with the given email from the tenant's
// namespace. Returns NotFound when no record matched.
func (s *Service) DeleteByEmail(ctx context.Context, tenantID, email string) error {
	session, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}

	res := session.DB(ctx).Where("email = ?", email).Delete(&model.User{})
	if res.Error != nil {
		s.log.Error("Failed to delete user", logger.ErrorFields("delete", res.Error))
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

// Login finds the user matching both first name and email in the tenant's
// namespace. A miss is reported as an opaque Unauthorized error so callers
// cannot probe which records exist.
func (s *Service) Login(ctx context.Context, tenantID string, req LoginRequest) (*model.User, error) {
	session, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var user model.User
	err = session.DB(ctx).
		Where("first_name = ? AND email = ?", req.FirstName, req.Email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("Login lookup miss", map[string]interface{}{
				logger.FieldTenantID: tenantID,
			})
			return nil, apperrors.Unauthorized("Invalid credentials.")
		}
		return nil, apperrors.Internal(err)
	}
	return &user, nil
}

// FindByID looks up a user by id in the tenant's namespace. Used by the
// authentication gate to confirm the token subject still exists.
func (s *Service) FindByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	session, err := s.registry.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := session.DB(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	return &user, nil
}
