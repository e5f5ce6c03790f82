package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/repository"
	"github.com/diamond-electronics/storefront-api/internal/token"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrTokenRevoked       = errors.New("refresh token revoked")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthResult is a user plus a freshly issued token pair.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	RefreshJTI   uuid.UUID
}

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	issuer    *token.Issuer
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, issuer *token.Issuer) *AuthService {
	return &AuthService{userRepo: userRepo, tokenRepo: tokenRepo, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*AuthResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:    req.Email,
		Password: string(hashed),
		Name:     req.Name,
		Role:     "customer",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// issueTokens mints the pair and records the refresh jti in the ledger so
// the token can be revoked independently of its signature staying valid.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.issuer.SignAccess(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, jti, err := s.issuer.SignRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, &model.RefreshToken{JTI: jti, UserID: user.ID}); err != nil {
		return nil, fmt.Errorf("record refresh token: %w", err)
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken, RefreshJTI: jti}, nil
}

// Rotate exchanges a refresh token for a new pair and retires the old one.
// A token is single-use: once rotated, presenting it again is rejected the
// same way a stolen token would be.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	record, err := s.tokenRepo.GetByJTI(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if record == nil || record.State() != model.TokenStateIssued {
		return nil, ErrTokenRevoked
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	rotated, err := s.tokenRepo.MarkRotated(ctx, jti, result.RefreshJTI)
	if err != nil {
		return nil, fmt.Errorf("mark token rotated: %w", err)
	}
	if !rotated {
		// A concurrent rotation won; this presentation is a replay.
		return nil, ErrTokenRevoked
	}

	return result, nil
}

// UpdateRole is the admin provisioning path: the first admin is seeded
// operationally, further admins are promoted through here.
func (s *AuthService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*model.User, error) {
	updated, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if !updated {
		return nil, ErrUserNotFound
	}
	return s.userRepo.GetByID(ctx, userID)
}

// Revoke is best-effort: logout must succeed even with a corrupt or expired
// cookie, so verification failures are swallowed.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil
	}
	if _, err := s.tokenRepo.Revoke(ctx, jti); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
