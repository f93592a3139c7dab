package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/validator"
	"gorm.io/gorm"
)

type UserService struct {
	DB        *gorm.DB
	validator *validator.Validator
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, validator: validator.New()}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}

	taken, err := s.emailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrEmailTaken.WithDetails(map[string]string{"email": "has already been taken"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	user := &models.User{Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the same error for an unknown email and a wrong
// password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, apperrors.InternalError(err)
	}
	return &user, nil
}

// UpdateProfile edits the acting user only. Changing the password requires
// the current one.
func (s *UserService) UpdateProfile(ctx context.Context, p *policy.Principal, params dtos.ProfileParams) (*models.User, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.Get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	form := dtos.ProfileForm{Name: user.Name, Email: user.Email}
	if params.Name != nil {
		form.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		form.Email = normalizeEmail(*params.Email)
	}
	if params.Password != nil {
		form.Password = *params.Password
	}
	if err := s.validator.Validate(form); err != nil {
		return nil, validationErr(err)
	}

	if form.Password != "" && !auth.CheckPasswordHash(params.CurrentPassword, user.PasswordHash) {
		return nil, apperrors.ValidationError(map[string]string{"current_password": "is invalid"})
	}
	if form.Email != user.Email {
		taken, err := s.emailTaken(ctx, form.Email, user.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrEmailTaken.WithDetails(map[string]string{"email": "has already been taken"})
		}
	}

	user.Name = form.Name
	user.Email = form.Email
	if form.Password != "" {
		hash, err := auth.HashPassword(form.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.PasswordHash = hash
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// SeedAdmin creates the first admin when email and password are set and no
// user with that email exists yet.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{Email: email, Name: "Admin", PasswordHash: hash, Admin: true}
	if err := s.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	logger.Info("First admin created", "email", email, "user_id", admin.ID)
	return nil
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	return count > 0, err
}
