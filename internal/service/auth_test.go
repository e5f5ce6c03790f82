package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/token"
)

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) (bool, error) {
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.Role = role
	return true, nil
}

type mockTokenRepo struct {
	tokens map[uuid.UUID]*model.RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[uuid.UUID]*model.RefreshToken)}
}

func (m *mockTokenRepo) Create(_ context.Context, t *model.RefreshToken) error {
	t.CreatedAt = time.Now()
	m.tokens[t.JTI] = t
	return nil
}

func (m *mockTokenRepo) GetByJTI(_ context.Context, jti uuid.UUID) (*model.RefreshToken, error) {
	return m.tokens[jti], nil
}

func (m *mockTokenRepo) MarkRotated(_ context.Context, jti, successor uuid.UUID) (bool, error) {
	t, ok := m.tokens[jti]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.RevokedAt = &now
	t.ReplacedBy = &successor
	return true, nil
}

func (m *mockTokenRepo) Revoke(_ context.Context, jti uuid.UUID) (bool, error) {
	t, ok := m.tokens[jti]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.RevokedAt = &now
	return true, nil
}

func newTestAuthService() (*AuthService, *mockUserRepo, *mockTokenRepo) {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()
	issuer := token.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(userRepo, tokenRepo, issuer), userRepo, tokenRepo
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{Email: "jo@example.com", Password: "supersecret", Name: "Jo"}
}

func TestAuthService_Register(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()

	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "customer", result.User.Role)
	assert.NotEqual(t, "supersecret", result.User.Password)
	assert.Len(t, tokenRepo.tokens, 1)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), dto.LoginRequest{Email: "jo@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "jo@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Rotate(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()
	first, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	second, err := svc.Rotate(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	old := tokenRepo.tokens[first.RefreshJTI]
	require.NotNil(t, old.RevokedAt)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, second.RefreshJTI, *old.ReplacedBy)
}

func TestAuthService_Rotate_SingleUse(t *testing.T) {
	svc, _, _ := newTestAuthService()
	first, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	// Presenting the consumed token again is treated as a replay.
	_, err = svc.Rotate(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Rotate_GarbageToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Rotate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Rotate_UnknownJTI(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()
	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	// Ledger row gone (e.g. revoked-and-purged session).
	delete(tokenRepo.tokens, result.RefreshJTI)

	_, err = svc.Rotate(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Rotate_UserDeleted(t *testing.T) {
	svc, userRepo, _ := newTestAuthService()
	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	delete(userRepo.users, result.User.ID)

	_, err = svc.Rotate(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Revoke(t *testing.T) {
	svc, _, _ := newTestAuthService()
	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), result.RefreshToken))

	_, err = svc.Rotate(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_UpdateRole(t *testing.T) {
	svc, userRepo, _ := newTestAuthService()
	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	promoted, err := svc.UpdateRole(context.Background(), result.User.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", promoted.Role)
	assert.Equal(t, "admin", userRepo.users[result.User.ID].Role)

	_, err = svc.UpdateRole(context.Background(), uuid.New(), "admin")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Revoke_GarbageTokenIsNoop(t *testing.T) {
	svc, _, _ := newTestAuthService()
	assert.NoError(t, svc.Revoke(context.Background(), "corrupt-cookie-value"))
}
