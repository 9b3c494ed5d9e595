package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"go-shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	mu    sync.Mutex
	users []models.User
	fail  error
}

func (m *memStore) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return slices.Clone(m.users), nil
}

func (m *memStore) Insert(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
	return nil
}

func (m *memStore) Update(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	return errors.New("missing")
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = slices.DeleteFunc(m.users, func(u models.User) bool { return u.ID == id })
	return nil
}

func newUserService(store UserStore) *UserService {
	s := NewUserService(store, quietLog())
	s.cost = bcrypt.MinCost
	return s
}

func TestUsers_CreateHashesAndDefaultsRole(t *testing.T) {
	store := &memStore{}
	svc := newUserService(store)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: " alice ", Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "s3cret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.users[0].Password), []byte("s3cret")))

	admin, err := svc.Create(ctx, UserInput{Username: "root", Email: "root@example.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestUsers_CreateValidation(t *testing.T) {
	svc := newUserService(&memStore{})
	ctx := context.Background()

	cases := map[string]UserInput{
		"no username":  {Email: "a@b", Password: "x"},
		"no email":     {Username: "a", Password: "x"},
		"no password":  {Username: "a", Email: "a@b"},
		"pipe":         {Username: "a|b", Email: "a@b", Password: "x"},
		"newline":      {Username: "a", Email: "a@b\n", Password: "x"},
		"unknown role": {Username: "a", Email: "a@b", Password: "x", Role: "superuser"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x", Password: "1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserInput{Username: "BOB", Email: "other@x", Password: "1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUsers_Lookups(t *testing.T) {
	svc := newUserService(&memStore{})
	ctx := context.Background()
	u, err := svc.Create(ctx, UserInput{Username: "carol", Email: "carol@example.com", Password: "pw"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)

	got, err = svc.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.GetByUsername(ctx, "Carol")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = svc.GetByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_UpdateAndDelete(t *testing.T) {
	svc := newUserService(&memStore{})
	ctx := context.Background()
	u, err := svc.Create(ctx, UserInput{Username: "dave", Email: "dave@x", Password: "old"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserInput{Username: "erin", Email: "erin@x", Password: "pw"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, UserInput{Username: "dave2", Email: "dave2@x"})
	require.NoError(t, err)
	assert.Equal(t, "dave2", updated.Username)
	assert.Equal(t, u.Password, updated.Password, "password kept when not provided")
	assert.Equal(t, models.RoleCustomer, updated.Role)

	_, err = svc.Authenticate(ctx, "dave2", "old")
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID, UserInput{Username: "erin", Email: "x@x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, "missing", UserInput{Username: "z", Email: "z@x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)
}

func TestUsers_Authenticate(t *testing.T) {
	store := &memStore{users: []models.User{
		{ID: "legacy", Username: "frank", Email: "f@x", Password: "plain", Role: models.RoleCustomer},
	}}
	svc := newUserService(store)
	ctx := context.Background()
	_, err := svc.Create(ctx, UserInput{Username: "grace", Email: "g@x", Password: "hashed"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "GRACE", "hashed")
	require.NoError(t, err)
	assert.Equal(t, "grace", u.Username)

	u, err = svc.Authenticate(ctx, "frank", "plain")
	require.NoError(t, err)
	assert.Equal(t, "legacy", u.ID)

	_, err = svc.Authenticate(ctx, "grace", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUsers_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := newUserService(&memStore{fail: boom})

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = svc.Create(context.Background(), UserInput{Username: "a", Email: "a@x", Password: "p"})
	assert.ErrorIs(t, err, boom)
}
