package products

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ecomapp/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("product not found")

// Filter narrows product queries. Zero fields do not constrain.
type Filter struct {
	CategoryIDs []primitive.ObjectID
	MinPrice    *float64
	MaxPrice    *float64
	// Keyword matches name or description, case-insensitively, as a literal.
	Keyword   string
	ExcludeID primitive.ObjectID
}

// Repository persists products. Find returns newest first; a zero limit
// returns every match.
type Repository interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Product, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func buildFilter(f Filter) bson.M {
	q := bson.M{}
	if len(f.CategoryIDs) > 0 {
		q["category"] = bson.M{"$in": f.CategoryIDs}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.Keyword != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
		q["$or"] = bson.A{bson.M{"name": rx}, bson.M{"description": rx}}
	}
	if !f.ExcludeID.IsZero() {
		q["_id"] = bson.M{"$ne": f.ExcludeID}
	}
	return q
}

func (r *MongoRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":             p.Name,
		"slug":             p.Slug,
		"description":      p.Description,
		"price":            p.Price,
		"category":         p.Category,
		"quantity":         p.Quantity,
		"shipping":         p.Shipping,
		"photoKey":         p.PhotoKey,
		"photoContentType": p.PhotoContentType,
		"updatedAt":        p.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoRepository) Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, buildFilter(f), opts)
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Count(ctx context.Context, f Filter) (int64, error) {
	return r.col.CountDocuments(ctx, buildFilter(f))
}
