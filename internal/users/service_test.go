package users

import (
	"context"
	"strings"
	"testing"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	prev := hashCost
	hashCost = bcrypt.MinCost
	t.Cleanup(func() { hashCost = prev })
	return NewService(NewMemoryRepository())
}

func register(t *testing.T, svc *Service, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: email, Password: "secret1",
		Phone: "555", Address: "1 Main St", Answer: "blue",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesPasswordAndRejectsDuplicate(t *testing.T) {
	svc := newTestService(t)
	u := register(t, svc, "a@example.com")
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, CheckPassword("secret1", u.Password))
	assert.False(t, u.ID.IsZero())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "B", Email: "a@example.com", Password: "x", Phone: "1", Address: "2", Answer: "3"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "a@example.com")
	ctx := context.Background()

	u, err := svc.Authenticate(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = svc.Authenticate(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotRegistered)
}

func TestResetPassword(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "a@example.com")
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@example.com", "red", "newpass"), ErrWrongAnswer)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "x@example.com", "blue", "newpass"), ErrWrongAnswer)

	require.NoError(t, svc.ResetPassword(ctx, "a@example.com", "blue", "newpass"))
	_, err := svc.Authenticate(ctx, "a@example.com", "newpass")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "a@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	u := register(t, svc, "a@example.com")
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Password: "abc"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, "a@example.com", updated.Email)
	assert.True(t, CheckPassword("secret1", updated.Password))

	updated, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Password: "longer-secret"})
	require.NoError(t, err)
	assert.True(t, CheckPassword("longer-secret", updated.Password))
}

func TestSetRoleAndList(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "a@example.com")
	register(t, svc, "b@example.com")
	ctx := context.Background()

	u, err := svc.SetRole(ctx, "b@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	stored, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())

	_, err = svc.SetRole(ctx, "missing@example.com", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrEmailNotRegistered)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegisterTrimsAndValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "   ", Email: "a@example.com", Password: "secret1", Phone: "1", Address: "2", Answer: "3"})
	assert.ErrorIs(t, err, ErrFieldRequired)
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: " \t", Password: "secret1", Phone: "1", Address: "2", Answer: "3"})
	assert.ErrorIs(t, err, ErrFieldRequired)

	u, err := svc.Register(ctx, RegisterInput{Name: " A ", Email: " a@example.com ", Password: "secret1", Phone: "1", Address: "2", Answer: " blue "})
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "a@example.com", u.Email)
	require.NoError(t, svc.ResetPassword(ctx, "a@example.com", "blue", "newpass"))
}

func TestPasswordLongerThanBcryptLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	long := strings.Repeat("p", MaxPasswordLength+8)

	_, err := HashPassword(long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = HashPassword(strings.Repeat("p", MaxPasswordLength))
	assert.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "long@example.com", Password: long, Phone: "1", Address: "2", Answer: "3"})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	u := register(t, svc, "a@example.com")
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@example.com", "blue", long), ErrPasswordTooLong)
	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Password: long})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.True(t, CheckPassword("secret1", u.Password))
}
