package products

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecomapp/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memProduct struct {
	p   models.Product
	seq int
}

// MemoryRepository is an in-process Repository. Insertion order breaks
// ties between equal creation times.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]memProduct
	seq   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[primitive.ObjectID]memProduct)}
}

func (m *MemoryRepository) Create(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.seq++
	m.items[p.ID] = memProduct{p: *p, seq: m.seq}
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = cur.p.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	cur.p = *p
	m.items[p.ID] = cur
	return nil
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

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if it, ok := m.items[id]; ok {
		p := it.p
		return &p, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.sorted() {
		if it.p.Slug == slug {
			p := it.p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Product{}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if it, ok := m.items[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, it.p)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Product{}
	var skipped int64
	for _, it := range m.sorted() {
		if !matches(it.p, f) {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		out = append(out, it.p)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRepository) Count(ctx context.Context, f Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, it := range m.items {
		if matches(it.p, f) {
			n++
		}
	}
	return n, nil
}

// sorted returns items newest first. Callers hold the lock.
func (m *MemoryRepository) sorted() []memProduct {
	out := make([]memProduct, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].p.CreatedAt.Equal(out[j].p.CreatedAt) {
			return out[i].p.CreatedAt.After(out[j].p.CreatedAt)
		}
		return out[i].seq > out[j].seq
	})
	return out
}

func matches(p models.Product, f Filter) bool {
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if p.Category == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(p.Name), kw) && !strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
	}
	if !f.ExcludeID.IsZero() && p.ID == f.ExcludeID {
		return false
	}
	return true
}
