package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/payment"
	"github.com/ecomapp/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingNonce   = errors.New("payment nonce is required")
	ErrUnknownProduct = errors.New("cart contains an unknown product")
)

// ProductLookup resolves product ids; unknown ids are omitted from the result.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

// BuyerLookup resolves a user by id, returning (nil, nil) when unknown.
type BuyerLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Service struct {
	repo     Repository
	products ProductLookup
	buyers   BuyerLookup
	gateway  payment.Gateway
}

func NewService(r Repository, p ProductLookup, b BuyerLookup, g payment.Gateway) *Service {
	return &Service{repo: r, products: p, buyers: b, gateway: g}
}

// ClientToken returns a token the client uses to tokenise its payment method.
func (s *Service) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Checkout charges the cart total and records the order. Each cart entry
// counts as one unit at the stored price.
func (s *Service) Checkout(ctx context.Context, buyer primitive.ObjectID, nonce string, cart []primitive.ObjectID) (*models.Order, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	if nonce == "" {
		return nil, ErrMissingNonce
	}
	found, err := s.products.GetByIDs(ctx, cart)
	if err != nil {
		return nil, err
	}
	prices := make(map[primitive.ObjectID]decimal.Decimal, len(found))
	for _, p := range found {
		prices[p.ID] = decimal.NewFromFloat(p.Price)
	}
	total := decimal.Zero
	for _, id := range cart {
		price, ok := prices[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, id.Hex())
		}
		total = total.Add(price)
	}
	res, err := s.gateway.Charge(ctx, total, nonce)
	if err != nil {
		return nil, err
	}
	o := &models.Order{
		Products: cart,
		Payment: models.Payment{
			TransactionID: res.TransactionID,
			Amount:        res.Amount.StringFixed(2),
			Success:       true,
		},
		Buyer:  buyer,
		Status: models.StatusNotProcessed,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		logger.Errorf("order for buyer %s not recorded after charge %s (%s): %v", buyer.Hex(), res.TransactionID, o.Payment.Amount, err)
		if verr := s.gateway.Void(ctx, res.TransactionID); verr != nil {
			logger.Errorf("void of charge %s failed, reconcile manually: %v", res.TransactionID, verr)
		}
		return nil, fmt.Errorf("record order %s: %w", res.TransactionID, err)
	}
	return o, nil
}

func (s *Service) ForBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.OrderView, error) {
	list, err := s.repo.ListByBuyer(ctx, buyer)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, list)
}

func (s *Service) All(ctx context.Context) ([]models.OrderView, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, list)
}

func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// populate resolves products and buyers with one lookup per distinct id.
// Products deleted since the order was placed are left out.
func (s *Service) populate(ctx context.Context, list []models.Order) ([]models.OrderView, error) {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, o := range list {
		for _, id := range o.Products {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	byID := map[primitive.ObjectID]models.Product{}
	if len(ids) > 0 {
		found, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			byID[p.ID] = p
		}
	}
	buyers := map[primitive.ObjectID]*models.Buyer{}
	out := make([]models.OrderView, 0, len(list))
	for _, o := range list {
		b, ok := buyers[o.Buyer]
		if !ok {
			u, err := s.buyers.GetByID(ctx, o.Buyer)
			if err != nil {
				return nil, err
			}
			if u != nil {
				b = &models.Buyer{ID: u.ID, Name: u.Name}
			}
			buyers[o.Buyer] = b
		}
		prods := make([]models.Product, 0, len(o.Products))
		for _, id := range o.Products {
			if p, ok := byID[id]; ok {
				prods = append(prods, p)
			}
		}
		out = append(out, models.OrderView{
			ID:        o.ID,
			Products:  prods,
			Payment:   o.Payment,
			Buyer:     b,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}
	return out, nil
}
