package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("test@example.com", "Test User", "correct-horse-battery", RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := User{
		ID:       uuid.New(),
		Email:    "test@example.com",
		Name:     "Test User",
		Role:     RoleAdmin,
		Password: "correct-horse-battery",
	}

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{
			name:    "valid user",
			mutate:  func(u *User) {},
			wantErr: nil,
		},
		{
			name:    "empty ID",
			mutate:  func(u *User) { u.ID = uuid.Nil },
			wantErr: ErrEmptyUserID,
		},
		{
			name:    "empty email",
			mutate:  func(u *User) { u.Email = "" },
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "empty name",
			mutate:  func(u *User) { u.Name = "" },
			wantErr: ErrEmptyName,
		},
		{
			name:    "unknown role",
			mutate:  func(u *User) { u.Role = "superuser" },
			wantErr: ErrInvalidRole,
		},
		{
			name:    "password too short",
			mutate:  func(u *User) { u.Password = "short" },
			wantErr: ErrPasswordTooShort,
		},
		{
			name: "password too long",
			mutate: func(u *User) {
				long := make([]byte, 73)
				for i := range long {
					long[i] = 'a'
				}
				u.Password = string(long)
			},
			wantErr: ErrPasswordTooLong,
		},
		{
			name: "no password and no hash",
			mutate: func(u *User) {
				u.Password = ""
				u.HashedPassword = ""
			},
			wantErr: ErrEmptyPassword,
		},
		{
			name: "hash only is fine",
			mutate: func(u *User) {
				u.Password = ""
				u.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := valid
			tt.mutate(&u)

			err := u.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}
