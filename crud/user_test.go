package crud

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirper/domain"
	"chirper/errs"
)

func TestUserCreateThenAuthenticate(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	ctx := context.Background()

	user := &domain.User{Handle: "Alice_01 ", Nickname: "Alice", Password: "hunter2hunter2"}
	require.NoError(t, us.Create(ctx, user))

	// The handle is normalized, the plaintext is gone, only the hash remains.
	assert.Equal(t, "alice_01", user.Handle)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "hunter2")

	got, err := us.Authenticate(ctx, "Alice_01", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserSerializationOmitsPassword(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	user := createTestUser(t, us, "bob", "Bob")

	out, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "password")
	assert.NotContains(t, string(out), user.PasswordHash)
}

func TestUserCreateDuplicateHandle(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	ctx := context.Background()
	createTestUser(t, us, "carol", "Carol")

	dup := &domain.User{Handle: "carol", Nickname: "Impostor", Password: "completely different"}
	err := us.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
}

func TestAuthenticateBadCredentialsIndistinguishable(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	ctx := context.Background()
	createTestUser(t, us, "dave", "Dave")

	_, errUnknownHandle := us.Authenticate(ctx, "nobody", "correct horse battery staple")
	_, errWrongPassword := us.Authenticate(ctx, "dave", "wrong password entirely")

	require.Error(t, errUnknownHandle)
	require.Error(t, errWrongPassword)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(errUnknownHandle))
	// Same code, same message: the endpoint must not allow handle enumeration.
	assert.Equal(t, errUnknownHandle.Error(), errWrongPassword.Error())
}

func TestUserCreateValidations(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	ctx := context.Background()

	tests := []struct {
		name string
		user domain.User
	}{
		{"missing password", domain.User{Handle: "eve", Nickname: "Eve"}},
		{"short password", domain.User{Handle: "eve", Nickname: "Eve", Password: "short"}},
		{"missing handle", domain.User{Nickname: "Eve", Password: "long enough password"}},
		{"bad handle chars", domain.User{Handle: "Eve!!", Nickname: "Eve", Password: "long enough password"}},
		{"missing nickname", domain.User{Handle: "eve", Password: "long enough password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := us.Create(ctx, &tt.user)
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}
}

func TestUserByIDNotFound(t *testing.T) {
	us := NewUserService(newTestDB(t), "test-pepper")
	_, err := us.ByID(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
