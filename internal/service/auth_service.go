package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dexter0900/TaskEngineX/internal/config"
	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
)

const magicLinkProvider = "magic-link"

type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	mailer   Mailer
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg, mailer: mailer}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	user := &repository.User{
		Email:     req.Email,
		Password:  &hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Providers: []string{"credentials"},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

// RequestMagicLink emails a one-time sign-in link. Unknown emails get an
// account created on the spot so the link works for first-time users.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		user = &repository.User{
			Email:     email,
			FirstName: email,
			Providers: []string{magicLinkProvider},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.cfg.MagicLinkExpiry) * time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.MagicLinkSecret))
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/magic?token=%s", s.cfg.FrontendURL, token)
	if s.mailer != nil {
		if err := s.mailer.SendMagicLink(user.Email, user.Name(), link); err != nil {
			log.Printf("⚠️ [auth] magic link email to %s failed: %v", user.Email, err)
		}
	}
	return nil
}

func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (*models.AuthResponse, error) {
	userID, err := s.parseToken(token, s.cfg.MagicLinkSecret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.userRepo.AddProvider(ctx, user.ID, magicLinkProvider); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	// Rotate: the presented token is consumed either way.
	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

// ParseAccessToken validates an access token and returns the user ID it was
// issued for.
func (s *AuthService) ParseAccessToken(token string) (string, error) {
	userID, err := s.parseToken(token, s.cfg.JWTSecret)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

func (s *AuthService) parseToken(token, secret string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return claims.Subject, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *repository.User) (*models.AuthResponse, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.cfg.JWTExpiry) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh := &repository.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.RefreshExpiry) * 24 * time.Hour),
	}
	if err := s.userRepo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		User:         ToUserResponse(user),
	}, nil
}
