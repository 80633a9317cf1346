package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/validation"
)

const defaultLanguage = "en"

// Service handles registration, login and token issuance
type Service struct {
	repo          UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewService creates a new auth service. Expiration is given in hours.
func NewService(repo UserRepository, jwtSecret string, expirationHours int) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     jwtSecret,
		jwtExpiration: time.Duration(expirationHours) * time.Hour,
	}
}

// Register creates a new user account and returns an access token
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	log := logger.WithContext(ctx)

	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), nil)
	}

	existing, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Error("failed to look up phone", zap.Error(err))
		return nil, common.NewInternalServerError("failed to register user")
	}
	if existing != nil {
		log.Warn("registration attempt with existing phone")
		return nil, common.NewBadRequestError("Phone number already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to register user")
	}

	now := time.Now().UTC()
	user := &User{
		ID:                 uuid.New(),
		Name:               req.Name,
		Phone:              req.Phone,
		Email:              req.Email,
		PasswordHash:       string(hash),
		LanguagePreference: defaultLanguage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, common.NewInternalServerError("failed to register user")
	}

	log.Info("user registered", zap.String("user_id", user.ID.String()))

	return s.issueToken(user)
}

// Login authenticates by phone and password and returns an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	log := logger.WithContext(ctx)

	user, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewUnauthorizedError("Invalid phone or password")
		}
		log.Error("failed to look up user", zap.Error(err))
		return nil, common.NewInternalServerError("failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("failed login attempt", zap.String("user_id", user.ID.String()))
		return nil, common.NewUnauthorizedError("Invalid phone or password")
	}

	log.Info("user logged in", zap.String("user_id", user.ID.String()))

	return s.issueToken(user)
}

// CurrentUser returns the profile of the authenticated user
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("User not found", err)
		}
		return nil, common.NewInternalServerError("failed to get user")
	}
	return user, nil
}

func (s *Service) issueToken(user *User) (*TokenResponse, error) {
	var email string
	if user.Email != nil {
		email = *user.Email
	}

	now := time.Now().UTC()
	claims := &middleware.Claims{
		UserID: user.ID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, common.NewInternalServerError("failed to issue token")
	}

	return &TokenResponse{AccessToken: signed, TokenType: "bearer"}, nil
}
