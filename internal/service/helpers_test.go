package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"cart-service/internal/catalog"
	"cart-service/internal/entity"
	"cart-service/internal/repository"
)

type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]*entity.MenuItem
	calls int
}

func newFakeCatalog(items ...*entity.MenuItem) *fakeCatalog {
	f := &fakeCatalog{items: map[string]*entity.MenuItem{}}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeCatalog) MenuItem(ctx context.Context, id string) (*entity.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	item, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCatalog) update(id string, fn func(*entity.MenuItem)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.items[id])
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	nextID int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*entity.Order{}}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	stored := *order
	f.orders[order.OrderNumber] = &stored
	return order, nil
}

func (f *fakeOrders) GetOrderByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNumber]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, orderNumber, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[orderNumber]; ok {
		order.Status = status
	}
	return nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func newCartRepo(rdb *redis.Client) *repository.CartRepository {
	return repository.NewCartRepository(rdb, time.Hour)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func noodles() *entity.MenuItem {
	return &entity.MenuItem{
		ID:    "12",
		Name:  "Beef Noodle Soup",
		Price: price("13.95"),
		Image: "noodles.jpg",
		OptionGroups: []entity.OptionGroup{
			{
				Name:      "Size",
				MinSelect: 1,
				MaxSelect: 1,
				Options: []entity.Option{
					{Name: "Regular", Available: true},
					{Name: "Large", AdditionalPrice: price("2.50"), Available: true},
				},
			},
			{
				Name:      "Toppings",
				MaxSelect: 2,
				Options: []entity.Option{
					{Name: "Egg", AdditionalPrice: price("1.00"), Available: true},
					{Name: "Bok Choy", AdditionalPrice: price("0.75"), Available: true},
				},
			},
		},
	}
}

func dumplings() *entity.MenuItem {
	return &entity.MenuItem{
		ID:    "7",
		Name:  "Pork Dumplings",
		Price: price("8.00"),
		OptionGroups: []entity.OptionGroup{
			{
				Name:      "Spice",
				MaxSelect: 1,
				Options: []entity.Option{
					{Name: "Mild", Available: true},
					{Name: "Hot", Available: true},
				},
			},
		},
	}
}

func springRolls() *entity.MenuItem {
	notice := 24
	return &entity.MenuItem{
		ID:                 "5",
		Name:               "Spring Roll Platter",
		Price:              price("6.50"),
		AdvanceNoticeHours: &notice,
	}
}
