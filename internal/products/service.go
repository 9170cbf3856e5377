package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// MaxPhotoSize is the largest accepted photo upload in bytes.
	MaxPhotoSize = 1000000
	LatestLimit  = 12
	PageSize     = 6
	RelatedLimit = 3
)

var (
	ErrPhotoTooLarge    = errors.New("photo is required and should be less then 1mb")
	ErrNoPhoto          = errors.New("product has no photo")
	ErrInvalidPage      = errors.New("page must be a positive integer")
	ErrCategoryNotFound = errors.New("category not found")
)

// PhotoStore holds photo bytes by key.
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// CategoryReader is the part of the category repository used to populate products.
type CategoryReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// Input is the editable part of a product.
type Input struct {
	Name        string
	Description string
	Price       float64
	Category    primitive.ObjectID
	Quantity    int
	Shipping    bool
}

// Photo is an uploaded image.
type Photo struct {
	Data        []byte
	ContentType string
}

type Service struct {
	repo       Repository
	categories CategoryReader
	photos     PhotoStore
}

func NewService(r Repository, c CategoryReader, photos PhotoStore) *Service {
	return &Service{repo: r, categories: c, photos: photos}
}

func (s *Service) checkCategory(ctx context.Context, id primitive.ObjectID) error {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Service) storePhoto(ctx context.Context, p *models.Product, photo *Photo) error {
	key := "products/" + uuid.NewString()
	if err := s.photos.Put(ctx, key, photo.Data, photo.ContentType); err != nil {
		return fmt.Errorf("store photo: %w", err)
	}
	p.PhotoKey = key
	p.PhotoContentType = photo.ContentType
	return nil
}

// dropPhoto deletes a stored photo, logging failures.
func (s *Service) dropPhoto(ctx context.Context, key string) {
	if err := s.photos.Delete(ctx, key); err != nil {
		logger.Warnf("failed to delete product photo %s: %v", key, err)
	}
}

func apply(p *models.Product, in Input) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = slug.Make(p.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Quantity = in.Quantity
	p.Shipping = in.Shipping
}

// Create stores a product and its optional photo.
func (s *Service) Create(ctx context.Context, in Input, photo *Photo) (*models.Product, error) {
	if photo != nil && len(photo.Data) > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	p := &models.Product{}
	apply(p, in)
	if photo != nil && len(photo.Data) > 0 {
		if err := s.storePhoto(ctx, p, photo); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if p.PhotoKey != "" {
			s.dropPhoto(ctx, p.PhotoKey)
		}
		return nil, err
	}
	return p, nil
}

// Update replaces the product fields and, when photo is given, its photo.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input, photo *Photo) (*models.Product, error) {
	if photo != nil && len(photo.Data) > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	oldKey := p.PhotoKey
	apply(p, in)
	if photo != nil && len(photo.Data) > 0 {
		if err := s.storePhoto(ctx, p, photo); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if p.PhotoKey != oldKey {
			s.dropPhoto(ctx, p.PhotoKey)
		}
		return nil, err
	}
	if oldKey != "" && oldKey != p.PhotoKey {
		s.dropPhoto(ctx, oldKey)
	}
	return p, nil
}

// Delete removes the product and its photo.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.HasPhoto() {
		s.dropPhoto(ctx, p.PhotoKey)
	}
	return nil
}

// populate attaches category documents, fetching each category once.
func (s *Service) populate(ctx context.Context, list []models.Product) ([]models.ProductView, error) {
	cache := map[primitive.ObjectID]*models.Category{}
	out := make([]models.ProductView, 0, len(list))
	for _, p := range list {
		c, ok := cache[p.Category]
		if !ok {
			var err error
			c, err = s.categories.GetByID(ctx, p.Category)
			if err != nil {
				return nil, err
			}
			cache[p.Category] = c
		}
		out = append(out, models.ProductView{Product: p, Category: c})
	}
	return out, nil
}

// Latest returns the newest products with categories populated.
func (s *Service) Latest(ctx context.Context) ([]models.ProductView, error) {
	list, err := s.repo.Find(ctx, Filter{}, 0, LatestLimit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, list)
}

func (s *Service) GetBySlug(ctx context.Context, sl string) (*models.ProductView, error) {
	p, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	views, err := s.populate(ctx, []models.Product{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Photo returns the stored photo bytes and content type.
func (s *Service) Photo(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		return nil, "", ErrNotFound
	}
	if !p.HasPhoto() {
		return nil, "", ErrNoPhoto
	}
	data, ct, err := s.photos.Get(ctx, p.PhotoKey)
	if err != nil {
		return nil, "", err
	}
	if ct == "" {
		ct = p.PhotoContentType
	}
	return data, ct, nil
}

// FilterBy returns products in any of the categories and within the price range.
func (s *Service) FilterBy(ctx context.Context, categoryIDs []primitive.ObjectID, min, max *float64) ([]models.Product, error) {
	return s.repo.Find(ctx, Filter{CategoryIDs: categoryIDs, MinPrice: min, MaxPrice: max}, 0, 0)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, Filter{})
}

// Page returns the 1-based page of products, newest first.
func (s *Service) Page(ctx context.Context, page int) ([]models.Product, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	return s.repo.Find(ctx, Filter{}, int64(page-1)*PageSize, PageSize)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	return s.repo.Find(ctx, Filter{Keyword: keyword}, 0, 0)
}

// Related returns other products of the same category.
func (s *Service) Related(ctx context.Context, pid, cid primitive.ObjectID) ([]models.ProductView, error) {
	list, err := s.repo.Find(ctx, Filter{CategoryIDs: []primitive.ObjectID{cid}, ExcludeID: pid}, 0, RelatedLimit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, list)
}

// ByCategorySlug returns the category and its products.
func (s *Service) ByCategorySlug(ctx context.Context, sl string) (*models.Category, []models.ProductView, error) {
	c, err := s.categories.GetBySlug(ctx, sl)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ErrCategoryNotFound
	}
	list, err := s.repo.Find(ctx, Filter{CategoryIDs: []primitive.ObjectID{c.ID}}, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	views, err := s.populate(ctx, list)
	if err != nil {
		return nil, nil, err
	}
	return c, views, nil
}

// GetByIDs returns the stored products among ids; unknown ids are skipped.
func (s *Service) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return s.repo.GetByIDs(ctx, ids)
}
