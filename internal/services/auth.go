// Package services holds the application services between the HTTP surface
// and the repos: auth, layout documents, preferences, theming and the thin
// CRM reads the front-end uses outside of layout rendering.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/passhash"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/requestdata"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("services: invalid email or password")
	ErrEmailTaken         = errors.New("services: email already registered")
	ErrNotAuthenticated   = errors.New("services: not authenticated")
	ErrTokenExpired       = errors.New("services: token expired")
)

type jwtClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context) error
	// SetContextFromToken verifies an access token and attaches the request
	// identity to ctx; everything downstream reads the user from there.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("services: invalid email")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("services: password must be at least 8 characters")
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := passhash.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if _, err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("get user: %w", err)
	}
	if err := passhash.Compare(user.Password, password); err != nil {
		if errors.Is(err, passhash.ErrMismatch) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	var pair TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One active session per user; a new login replaces the old tokens.
		if err := s.userTokenRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("clear old tokens: %w", err)
		}
		p, err := s.issueTokens(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		if rd := requestdata.GetRequestData(ctx); rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return TokenPair{}, ErrNotAuthenticated
	}

	var pair TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAuthenticated
			}
			return fmt.Errorf("get refresh token: %w", err)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			_ = s.userTokenRepo.DeleteByUserID(ctx, tx, existing.UserID)
			return ErrTokenExpired
		}
		if err := s.userTokenRepo.DeleteByUserID(ctx, tx, existing.UserID); err != nil {
			return fmt.Errorf("rotate tokens: %w", err)
		}
		p, err := s.issueTokens(ctx, tx, existing.UserID)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return ErrNotAuthenticated
	}
	return s.userTokenRepo.DeleteByUserID(ctx, nil, rd.UserID)
}

func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (TokenPair, error) {
	access, err := s.signAccessToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.NewString()

	token := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
	}
	if _, err := s.userTokenRepo.Create(ctx, tx, token); err != nil {
		return TokenPair{}, fmt.Errorf("store tokens: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) signAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecretKey))
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return ctx, ErrNotAuthenticated
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid subject in token: %w", err)
	}

	rd := &requestdata.RequestData{TokenString: tokenString, UserID: userID}
	if stored, err := s.userTokenRepo.GetByAccessToken(ctx, nil, tokenString); err == nil {
		rd.RefreshToken = stored.RefreshToken
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (s *authService) AccessTTL() time.Duration {
	return s.accessTTL
}
