package categories

import (
	"context"
	"sort"
	"sync"

	"github.com/ecomapp/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Category
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[primitive.ObjectID]models.Category)}
}

func (m *MemoryRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range m.items {
		if c.Name == name && id != except {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) Create(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(c.Name, primitive.NilObjectID) {
		return ErrDuplicate
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.items[c.ID] = *c
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return ErrNotFound
	}
	if m.nameTaken(c.Name, c.ID) {
		return ErrDuplicate
	}
	m.items[c.ID] = *c
	return nil
}

func (m *MemoryRepository) find(match func(models.Category) bool) *models.Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.items {
		if match(c) {
			cp := c
			return &cp
		}
	}
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return m.find(func(c models.Category) bool { return c.ID == id }), nil
}

func (m *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return m.find(func(c models.Category) bool { return c.Slug == slug }), nil
}

func (m *MemoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return m.find(func(c models.Category) bool { return c.Name == name }), nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}
