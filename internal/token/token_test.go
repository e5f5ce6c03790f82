package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

func testIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestIssuer_AccessRoundTrip(t *testing.T) {
	issuer := testIssuer()
	user := &model.User{ID: uuid.New(), Email: "a@example.com", Name: "A", Role: "customer"}

	signed, err := issuer.SignAccess(user)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestIssuer_RefreshCarriesFreshJTI(t *testing.T) {
	issuer := testIssuer()
	userID := uuid.New()

	first, jti1, err := issuer.SignRefresh(userID)
	require.NoError(t, err)
	second, jti2, err := issuer.SignRefresh(userID)
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
	assert.NotEqual(t, first, second)

	claims, err := issuer.VerifyRefresh(first)
	require.NoError(t, err)
	assert.Equal(t, jti1.String(), claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	issuer := testIssuer()
	user := &model.User{ID: uuid.New(), Role: "customer"}

	access, err := issuer.SignAccess(user)
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_ExpiredRefreshRejected(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret", time.Hour, -time.Minute)

	signed, _, err := issuer.SignRefresh(uuid.New())
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_GarbageRejected(t *testing.T) {
	_, err := testIssuer().VerifyAccess("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
