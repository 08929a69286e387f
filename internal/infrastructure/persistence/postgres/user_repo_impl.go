package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/internal/domain/repository"
	"github.com/stockassist/platform/internal/infrastructure/monitoring"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/logger"
)

// UserRepoImpl implements repository.UserRepository on gorm.
type UserRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

var _ repository.UserRepository = (*UserRepoImpl)(nil)

// NewUserRepository creates a gorm-backed user repository.
func NewUserRepository(db *gorm.DB, log logger.Logger) *UserRepoImpl {
	return &UserRepoImpl{
		db:     db,
		logger: log.WithComponent("user_repository"),
	}
}

// FindWithProfileByUsername loads a user and its profile in one call.
func (r *UserRepoImpl) FindWithProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := monitoring.StartSpan(ctx, "UserRepository.FindWithProfileByUsername", nil)
	defer span.End()

	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUnknownUser
		}
		monitoring.RecordError(ctx, err)
		r.logger.Error(ctx, "Failed to query user", err, logger.String("username", username))
		return nil, errors.ErrStoreUnavailable.WithError(err)
	}
	return &user, nil
}

// Save inserts a user together with its profile, if any.
func (r *UserRepoImpl) Save(ctx context.Context, user *models.User) error {
	ctx, span := monitoring.StartSpan(ctx, "UserRepository.Save", nil)
	defer span.End()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrInvalidRequest.WithMessage("username %q already exists", user.Username)
		}
		monitoring.RecordError(ctx, err)
		r.logger.Error(ctx, "Failed to create user", err, logger.String("username", user.Username))
		return errors.ErrStoreUnavailable.WithError(err)
	}

	r.logger.Info(ctx, "User created successfully",
		logger.String("username", user.Username),
		logger.String("user_id", user.ID.String()),
	)
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
