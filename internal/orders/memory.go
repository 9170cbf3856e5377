package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecomapp/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	cp.Products = append([]primitive.ObjectID(nil), o.Products...)
	m.items = append(m.items, cp)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.items {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			m.items[i].UpdatedAt = time.Now().UTC()
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// newestFirst relies on items being kept in insertion order.
func (m *MemoryRepository) newestFirst(match func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if match(m.items[i]) {
			out = append(out, m.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepository) ListByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.newestFirst(func(o models.Order) bool { return o.Buyer == buyer }), nil
}

func (m *MemoryRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.newestFirst(func(models.Order) bool { return true }), nil
}
