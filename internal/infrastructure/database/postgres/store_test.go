package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

// newTestDB opens an in-memory SQLite database with the production schema.
// A single connection keeps every goroutine on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	migration := NewMigration(db, logger.Discard())
	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())

	t.Cleanup(func() { _ = Wrap(db).Close() })
	return db
}

func createProduct(t *testing.T, db *gorm.DB, slug string, price, discount int64, stock int) *product.Product {
	t.Helper()
	p := &product.Product{Name: slug, Slug: slug, Price: price, Discount: discount, Quantity: stock, IsActive: true}
	require.NoError(t, NewProductStore(db).Create(context.Background(), p))
	return p
}

func TestHealth(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, Wrap(db).Health(context.Background()))
	assert.False(t, isPostgres(db))
}

func TestProductStore(t *testing.T) {
	db := newTestDB(t)
	store := NewProductStore(db)
	ctx := context.Background()

	mug := createProduct(t, db, "mug", 100, 10, 3)
	createProduct(t, db, "plate", 50, 0, 1)

	err := store.Create(ctx, &product.Product{Name: "Mug", Slug: "mug", Price: 1})
	assert.ErrorIs(t, err, product.ErrDuplicateSlug)

	got, err := store.GetBySlug(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, mug.ID, got.ID)

	_, err = store.Get(ctx, 999)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	many, err := store.GetMany(ctx, []uint{mug.ID, 999})
	require.NoError(t, err)
	assert.Len(t, many, 1)
	found := many[mug.ID]
	assert.Equal(t, int64(90), found.UnitPrice())
}

func TestLedger(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	p := createProduct(t, db, "mug", 100, 0, 5)

	ok, err := ledger.Reduce(ctx, p.ID, 3, inventory.Sale("abc123"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Reduce(ctx, p.ID, 3, inventory.Sale("abc124"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.Increase(ctx, p.ID, 1, inventory.Restock("delivery")))

	available, err := ledger.Available(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	movements, err := ledger.Movements(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, inventory.ReasonRestock, movements[0].Reason)
	assert.Equal(t, inventory.MovementTypeOutbound, movements[1].MovementType)
	assert.Equal(t, "order:abc123", movements[1].Reference)

	_, err = ledger.Reduce(ctx, 999, 1, inventory.Sale("x"))
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.ErrorIs(t, ledger.Increase(ctx, 999, 1, inventory.Restock("")), product.ErrProductNotFound)
	_, err = ledger.Available(ctx, 999)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	_, err = ledger.Reduce(ctx, p.ID, 0, inventory.Sale("x"))
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestCartStoreUpsert(t *testing.T) {
	db := newTestDB(t)
	store := NewCartStore(db)
	ctx := context.Background()
	owner := cart.ForUser(4)

	require.NoError(t, store.Add(ctx, owner, 2, 1))
	require.NoError(t, store.Add(ctx, owner, 2, 2))
	require.NoError(t, store.Add(ctx, owner, 1, 5))
	require.NoError(t, store.Add(ctx, cart.ForUser(5), 1, 1))

	lines, err := store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []cart.Line{{ProductID: 1, Quantity: 5}, {ProductID: 2, Quantity: 3}}, lines)

	require.NoError(t, store.Remove(ctx, owner, 1))
	require.NoError(t, store.Remove(ctx, owner, 1))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, store.Clear(ctx, owner))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)

	other, err := store.Lines(ctx, cart.ForUser(5))
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestUserStore(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	u := &user.User{Username: "buyer", Slug: "buyer", IsActive: true}
	require.NoError(t, store.Create(ctx, u))
	require.NotNil(t, u.Address)
	assert.Equal(t, u.ID, u.Address.UserID)

	assert.ErrorIs(t, store.Create(ctx, &user.User{Username: "buyer", Slug: "buyer-2"}), user.ErrUserExists)

	// Distinct usernames may fold to the same slug
	require.NoError(t, store.Create(ctx, &user.User{Username: "a.b", Slug: "a-b"}))
	require.NoError(t, store.Create(ctx, &user.User{Username: "a b", Slug: "a-b"}))

	updated, err := store.Update(ctx, u.ID, func(u *user.User) error {
		u.Score = 42
		u.DiscountPercent = decimal.RequireFromString("12.5")
		u.Address.City = "Shiraz"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.Score)

	stored, err := store.GetByUsername(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.Score)
	assert.True(t, stored.DiscountPercent.Equal(decimal.RequireFromString("12.5")))
	require.NotNil(t, stored.Address)
	assert.Equal(t, "Shiraz", stored.Address.City)

	boom := errors.New("boom")
	_, err = store.Update(ctx, u.ID, func(u *user.User) error {
		u.Score = 1000
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err = store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.Score)

	_, err = store.Update(ctx, 999, func(*user.User) error { return nil })
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestSeedInitialData(t *testing.T) {
	db := newTestDB(t)
	migration := NewMigration(db, logger.Discard())
	policy := user.DefaultAccrualPolicy()

	require.NoError(t, migration.SeedInitialData(policy))
	require.NoError(t, migration.SeedInitialData(policy))

	admin, err := NewUserStore(db).GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Zero(t, admin.Score)
	require.NotNil(t, admin.Address)

	var products int64
	require.NoError(t, db.Model(&product.Product{}).Count(&products).Error)
	assert.Equal(t, int64(3), products)
}

func TestLockTimeoutStatement(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want string
	}{
		{wait: 0, want: "SET LOCAL lock_timeout = '1ms'"},
		{wait: 300 * time.Microsecond, want: "SET LOCAL lock_timeout = '1ms'"},
		{wait: 1500 * time.Microsecond, want: "SET LOCAL lock_timeout = '2ms'"},
		{wait: 5 * time.Second, want: "SET LOCAL lock_timeout = '5000ms'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lockTimeoutStatement(tt.wait), tt.wait.String())
	}
}

func TestPaymentStore(t *testing.T) {
	db := newTestDB(t)
	store := NewPaymentStore(db)
	ctx := context.Background()

	p := &payment.Payment{PaymentID: identifier.NewUUID(), OrderID: 1, UserID: 1, Price: 100, IsPaid: true}
	require.NoError(t, store.Create(ctx, p))

	dup := &payment.Payment{PaymentID: identifier.NewUUID(), OrderID: 1, UserID: 1, Price: 100, IsPaid: true}
	assert.ErrorIs(t, store.Create(ctx, dup), payment.ErrAlreadyPaid)

	got, err := store.GetByOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p.PaymentID, got.PaymentID)

	_, err = store.GetByOrder(ctx, 2)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

type orderFixture struct {
	db      *gorm.DB
	store   *OrderStore
	ledger  *Ledger
	service *order.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	store := NewOrderStore(db, 3)
	return &orderFixture{
		db:     db,
		store:  store,
		ledger: NewLedger(db),
		service: order.NewService(store, identifier.NewRandomGenerator(6), nil, order.Options{
			LockTimeout: time.Second,
		}, logger.Discard()),
	}
}

func (f *orderFixture) place(t *testing.T, lines ...cart.Item) *order.Order {
	t.Helper()
	o, err := f.service.CreateOrder(context.Background(), 1, &cart.Cart{Owner: cart.ForUser(1), Items: lines})
	require.NoError(t, err)
	return o
}

func line(p *product.Product, qty int) cart.Item {
	return cart.Item{ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, UnitDiscount: p.Discount, Quantity: qty}
}

func TestOrderStoreLookups(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := createProduct(t, f.db, "a", 100, 10, 5)
	b := createProduct(t, f.db, "b", 50, 0, 5)

	o := f.place(t, line(a, 2), line(b, 1))

	bySlug, err := f.store.GetBySlug(ctx, o.Slug)
	require.NoError(t, err)
	assert.Equal(t, o.ID, bySlug.ID)
	assert.Equal(t, int64(230), bySlug.TotalPrice())

	err = f.store.Create(ctx, &order.Order{PublicID: o.PublicID, Slug: "other", UserID: 1})
	assert.ErrorIs(t, err, order.ErrDuplicateOrderID)

	f.place(t, line(a, 1))
	orders, err := f.store.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Greater(t, orders[0].ID, orders[1].ID)

	require.NoError(t, f.store.MarkPaid(ctx, o.ID))
	paid, err := f.store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.ErrorIs(t, f.store.MarkPaid(ctx, 999), order.ErrOrderNotFound)
}

func TestCompleteOrderAgainstDatabase(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := createProduct(t, f.db, "a", 100, 10, 5)
	b := createProduct(t, f.db, "b", 50, 0, 3)

	o := f.place(t, line(a, 2), line(b, 10))

	result := f.service.CompleteOrder(ctx, o.ID)
	assert.Equal(t, order.OutcomeInsufficientInventory, result.Outcome)
	require.NotNil(t, result.Item)
	assert.Equal(t, b.ID, result.Item.ProductID)

	stockA, err := f.ledger.Available(ctx, a.ID)
	require.NoError(t, err)
	stockB, err := f.ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stockA)
	assert.Equal(t, 3, stockB)

	require.NoError(t, f.ledger.Increase(ctx, b.ID, 7, inventory.Restock("")))

	result = f.service.CompleteOrder(ctx, o.ID)
	require.Equal(t, order.OutcomeCompleted, result.Outcome, result.Reason)

	stockA, err = f.ledger.Available(ctx, a.ID)
	require.NoError(t, err)
	stockB, err = f.ledger.Available(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stockA)
	assert.Equal(t, 0, stockB)

	stored, err := f.store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.NotNil(t, stored.CompletedAt)

	again := f.service.CompleteOrder(ctx, o.ID)
	assert.Equal(t, order.OutcomeAlreadyCompleted, again.Outcome)
	stockA, err = f.ledger.Available(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stockA)

	missing := f.service.CompleteOrder(ctx, 999)
	assert.Equal(t, order.OutcomeNotFound, missing.Outcome)
}

func TestConcurrentCompletionAgainstDatabase(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := createProduct(t, f.db, "a", 100, 0, 4)
	o := f.place(t, line(a, 4))

	var completed, repeated int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := f.service.CompleteOrder(ctx, o.ID)
			mu.Lock()
			defer mu.Unlock()
			switch r.Outcome {
			case order.OutcomeCompleted:
				completed++
			case order.OutcomeAlreadyCompleted:
				repeated++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, completed)
	assert.Equal(t, 7, repeated)

	available, err := f.ledger.Available(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, available)
}
