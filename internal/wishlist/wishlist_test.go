package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/storage"
)

func TestService_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 3))
	require.NoError(t, svc.Add(ctx, "user-1", 3))

	ids, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestService_ListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 5))
	require.NoError(t, svc.Add(ctx, "user-1", 1))
	require.NoError(t, svc.Add(ctx, "user-1", 4))

	ids, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 1, 4}, ids)
}

func TestService_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 2))
	require.NoError(t, svc.Remove(ctx, "user-1", 99))

	ids, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 1))
	require.NoError(t, svc.Add(ctx, "user-1", 2))
	require.NoError(t, svc.Add(ctx, "user-1", 3))
	require.NoError(t, svc.Remove(ctx, "user-1", 2))

	ids, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestService_ListsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 1))
	require.NoError(t, svc.Add(ctx, "user-2", 7))

	ids, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = svc.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestService_RequiresUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	err := svc.Add(ctx, "", 1)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))

	_, err = svc.List(ctx, "")
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestService_Contains(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	require.NoError(t, svc.Add(ctx, "user-1", 4))

	ok, err := svc.Contains(ctx, "user-1", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Contains(ctx, "user-1", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}
