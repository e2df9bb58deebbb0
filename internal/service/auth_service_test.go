package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/petition-service/internal/config"
	"github.com/civicdesk/petition-service/internal/domain"
)

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: map[string]*domain.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	stored, ok := f.byID[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = u.Name
	stored.Phone = u.Phone
	stored.Address = u.Address
	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, email string) error {
	for _, u := range f.byID {
		if u.Email == email {
			u.EmailVerified = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) Count(context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func newProfileService(users *fakeUserRepo) *AuthService {
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		OTPTTLMinutes:         10,
		BcryptCost:            4,
	}}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users})
}

func TestUpdateProfileKeepsOmittedFields(t *testing.T) {
	user := &domain.User{
		ID:      "user-1",
		Name:    "Jordan Reyes",
		Email:   "jordan@example.com",
		Phone:   "555-0101",
		Address: "12 Elm Street",
	}
	svc := newProfileService(newFakeUserRepo(user))

	updated, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdateInput{
		Phone: "555-0199",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jordan Reyes", updated.Name)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "12 Elm Street", updated.Address)

	stored, err := svc.Profile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "555-0199", stored.Phone)
	assert.Equal(t, "jordan@example.com", stored.Email)
}

func TestUpdateProfileUnknownUserNotFound(t *testing.T) {
	svc := newProfileService(newFakeUserRepo())

	_, err := svc.UpdateProfile(context.Background(), "missing", ProfileUpdateInput{Name: "Anyone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
