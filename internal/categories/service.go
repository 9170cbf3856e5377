package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNameRequired = errors.New("name is required")

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Create adds a category; the slug is derived from the name.
func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicate
	}
	c := &models.Category{Name: name, Slug: slug.Make(name)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename changes the name and slug of an existing category.
func (s *Service) Rename(ctx context.Context, id primitive.ObjectID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	c := &models.Category{ID: id, Name: name, Slug: slug.Make(name)}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

// Get returns ErrNotFound when the id is unknown.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) GetBySlug(ctx context.Context, sl string) (*models.Category, error) {
	c, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
