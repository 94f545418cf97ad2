package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/infrastructure/memory"
)

func addProduct(t *testing.T, c *memory.Catalog, slug string, stock int) uint {
	t.Helper()
	p := &product.Product{Name: slug, Slug: slug, Price: 100, Quantity: stock, IsActive: true}
	require.NoError(t, c.Create(context.Background(), p))
	return p.ID
}

func addOrder(t *testing.T, s *memory.OrderStore, publicID string, items ...order.Item) uint {
	t.Helper()
	o := &order.Order{PublicID: publicID, Slug: publicID, UserID: 1, Items: items}
	require.NoError(t, s.Create(context.Background(), o))
	return o.ID
}

func TestHoldStockHidesChangesUntilRelease(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog()
	a := addProduct(t, catalog, "a", 2)

	held, release, err := catalog.HoldStock(ctx, []uint{a, a, 999})
	require.NoError(t, err)

	ok, err := held.Reduce(ctx, a, 2, inventory.Sale("x"))
	require.NoError(t, err)
	require.True(t, ok)

	read := make(chan int, 1)
	go func() {
		n, _ := catalog.Available(ctx, a)
		read <- n
	}()

	require.NoError(t, held.Increase(ctx, a, 2, inventory.Rollback("x")))
	release()
	assert.Equal(t, 2, <-read)

	_, err = held.Reduce(ctx, 999, 1, inventory.Sale("x"))
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestHoldStockRespectsDeadline(t *testing.T) {
	catalog := memory.NewCatalog()
	a := addProduct(t, catalog, "a", 1)
	b := addProduct(t, catalog, "b", 1)

	_, release, err := catalog.HoldStock(context.Background(), []uint{b})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = catalog.HoldStock(ctx, []uint{b, a})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// a was released again after the failed hold
	n, err := catalog.Available(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithExclusiveLockIsBusyWhileStockIsHeld(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog()
	store := memory.NewOrderStore(catalog)
	a := addProduct(t, catalog, "a", 3)

	first := addOrder(t, store, "first1", order.Item{ProductID: a, Quantity: 1})
	second := addOrder(t, store, "second", order.Item{ProductID: a, Quantity: 1})

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.WithExclusiveLock(ctx, first, time.Second, func(order.Locked) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := store.WithExclusiveLock(ctx, second, 20*time.Millisecond, func(order.Locked) error {
		t.Error("ran while another pass held the stock")
		return nil
	})
	assert.ErrorIs(t, err, order.ErrLockBusy)

	close(release)
	require.NoError(t, <-done)

	err = store.WithExclusiveLock(ctx, second, time.Second, func(l order.Locked) error {
		ok, err := l.Inventory().Reduce(ctx, a, 1, inventory.Sale("second"))
		require.NoError(t, err)
		assert.True(t, ok)
		return l.MarkCompleted(ctx)
	})
	require.NoError(t, err)

	stored, err := store.Get(ctx, second)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	n, err := catalog.Available(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
