package store

import (
	"context"
	"os"
	"testing"

	"go-shop/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server; set MONGO_URI to enable.
func TestMongoUserStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := ConnectMongo(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := "go_shop_test_" + uuid.NewString()[:8]
	s := NewMongoUserStore(client, db)
	t.Cleanup(func() { _ = client.Database(db).Drop(context.Background()) })

	u := models.User{ID: uuid.NewString(), Username: "mongo", Email: "m@x", Password: "h"}
	require.NoError(t, s.Insert(ctx, u))
	assert.ErrorIs(t, s.Insert(ctx, u), ErrUserExists)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleCustomer, users[0].Role)
	assert.Equal(t, "h", users[0].Password)

	u.Email = "new@x"
	require.NoError(t, s.Update(ctx, u))
	require.NoError(t, s.Delete(ctx, u.ID))
	assert.ErrorIs(t, s.Delete(ctx, u.ID), ErrUserNotFound)
	assert.ErrorIs(t, s.Update(ctx, u), ErrUserNotFound)
}
