package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/covaid/covaid-backend/internal/models"
	"github.com/covaid/covaid-backend/internal/testutil"
	"github.com/covaid/covaid-backend/internal/validation"
)

type AuthServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	cfg *config.Config
	svc *AuthService
	ctx context.Context
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.cfg = &config.Config{JWTSecret: "auth-test-secret", JWTAccessExpiry: time.Hour}
	s.svc = NewAuthService(s.db, s.cfg)
	s.ctx = context.Background()
}

func registerRequest(mobile string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:         "Asha",
		Email:        "Asha@Example.com",
		Location:     "Pune",
		Gender:       "female",
		Age:          31,
		MobileNumber: mobile,
		Password:     "correct-horse",
	}
}

func (s *AuthServiceSuite) TestRegister() {
	user, err := s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)
	s.Equal("asha@example.com", user.Email)
	s.Equal("9000000001", user.MobileNumber)

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "mobile_number = ?", "9000000001").Error)
	s.NotEqual("correct-horse", stored.Password)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct-horse")))
	s.Equal("user", stored.Role)
}

func (s *AuthServiceSuite) TestRegister_DuplicateMobile() {
	_, err := s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)

	_, err = s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.ErrorIs(err, ErrMobileTaken)
}

func (s *AuthServiceSuite) TestRegister_Invalid() {
	short := registerRequest("9000000001")
	short.Password = "short"
	_, err := s.svc.Register(s.ctx, short)
	s.True(validation.IsValidation(err))
	s.Contains(err.Error(), "password")

	noName := registerRequest("9000000001")
	noName.Name = "   "
	_, err = s.svc.Register(s.ctx, noName)
	s.True(validation.IsValidation(err))
}

func (s *AuthServiceSuite) TestLogin() {
	_, err := s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)

	resp, err := s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "correct-horse"})
	s.Require().NoError(err)
	s.Equal("bearer", resp.TokenType)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	s.Require().NoError(err)

	claims := token.Claims.(jwt.MapClaims)
	s.Equal("9000000001", claims["sub"])
	s.Equal("Asha", claims["name"])
	exp, err := claims.GetExpirationTime()
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func (s *AuthServiceSuite) TestLogin_Rejected() {
	_, err := s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)

	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "wrong-password"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9999999999", Password: "correct-horse"})
	s.ErrorIs(err, ErrInvalidCredentials)

	s.Require().NoError(s.svc.SetDisabled(s.ctx, "9000000001", true))
	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "correct-horse"})
	s.ErrorIs(err, ErrInvalidCredentials)

	s.Require().NoError(s.svc.SetDisabled(s.ctx, "9000000001", false))
	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "correct-horse"})
	s.NoError(err)
}

func (s *AuthServiceSuite) TestForgotPassword() {
	_, err := s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)

	err = s.svc.ForgotPassword(s.ctx, &dto.ForgotPasswordRequest{MobileNumber: "9999999999", Password: "new-password"})
	s.ErrorIs(err, ErrUserNotFound)

	s.Require().NoError(s.svc.ForgotPassword(s.ctx, &dto.ForgotPasswordRequest{MobileNumber: "9000000001", Password: "new-password"}))

	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "correct-horse"})
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.svc.Login(s.ctx, &dto.LoginRequest{Username: "9000000001", Password: "new-password"})
	s.NoError(err)
}

func (s *AuthServiceSuite) TestProfileAndRoles() {
	_, err := s.svc.Profile(s.ctx, "9000000001")
	s.ErrorIs(err, ErrUserNotFound)
	s.ErrorIs(s.svc.SetDisabled(s.ctx, "9000000001", true), ErrUserNotFound)

	_, err = s.svc.Register(s.ctx, registerRequest("9000000001"))
	s.Require().NoError(err)

	profile, err := s.svc.Profile(s.ctx, "9000000001")
	s.Require().NoError(err)
	s.Equal("Pune", profile.Location)
	s.Equal(31, profile.Age)

	s.False(s.svc.IsAdmin(s.ctx, "9000000001"))
	s.Require().NoError(s.db.Model(&models.User{}).Where("mobile_number = ?", "9000000001").Update("role", "admin").Error)
	s.True(s.svc.IsAdmin(s.ctx, "9000000001"))
}
