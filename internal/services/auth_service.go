package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/covaid/covaid-backend/internal/metrics"
	"github.com/covaid/covaid-backend/internal/models"
	"github.com/covaid/covaid-backend/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMobileTaken        = errors.New("mobile number already registered")
	ErrInvalidCredentials = errors.New("invalid mobile number or password")
	ErrUserNotFound       = errors.New("user not found")
)

const tokenType = "bearer"

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Location:     strings.TrimSpace(req.Location),
		Gender:       req.Gender,
		Age:          req.Age,
		MobileNumber: req.MobileNumber,
		Password:     string(hash),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("mobile_number = ?", user.MobileNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check mobile number: %w", err)
		}
		if count > 0 {
			return ErrMobileTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMobileTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersRegistered.Inc()
	resp := toUserResponse(&user)
	return &resp, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("mobile_number = ?", req.Username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		metrics.AuthFailures.Inc()
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		metrics.AuthFailures.Inc()
		return nil, ErrInvalidCredentials
	}
	if user.Disabled {
		metrics.AuthFailures.Inc()
		slog.Warn("login attempt on disabled account", "mobile", user.MobileNumber)
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.LoginResponse{AccessToken: token, TokenType: tokenType}, nil
}

func (s *AuthService) Profile(ctx context.Context, mobile string) (*dto.UserResponse, error) {
	user, err := s.findByMobile(s.db.WithContext(ctx), mobile)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	if err := validation.Validate(req); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("mobile_number = ?", req.MobileNumber).
		Updates(map[string]interface{}{"password": string(hash), "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetDisabled blocks or restores an account. Tokens already issued stay valid
// until they expire; new logins are refused.
func (s *AuthService) SetDisabled(ctx context.Context, mobile string, disabled bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("mobile_number = ?", mobile).
		Updates(map[string]interface{}{"disabled": disabled, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	slog.Info("user status changed", "mobile", mobile, "disabled", disabled)
	return nil
}

// IsAdmin reports whether the stored account for mobile carries the admin role.
func (s *AuthService) IsAdmin(ctx context.Context, mobile string) bool {
	user, err := s.findByMobile(s.db.WithContext(ctx), mobile)
	return err == nil && user.Role == "admin"
}

func (s *AuthService) findByMobile(db *gorm.DB, mobile string) (*models.User, error) {
	var user models.User
	if err := db.Where("mobile_number = ?", mobile).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.MobileNumber,
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Location:     u.Location,
		Gender:       u.Gender,
		Age:          u.Age,
		MobileNumber: u.MobileNumber,
		Disabled:     u.Disabled,
	}
}
