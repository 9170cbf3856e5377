package handlers

import (
	"github.com/ecomapp/storefront/internal/categories"
	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/orders"
	"github.com/ecomapp/storefront/internal/products"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/ecomapp/storefront/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Services bundles the domain services the controllers depend on.
type Services struct {
	Users      *users.Service
	Categories *categories.Service
	Products   *products.Service
	Orders     *orders.Service
	Blacklist  *tokens.Blacklist
}

// RegisterAPI mounts every controller on the /api/v1 group.
func RegisterAPI(api *gin.RouterGroup, cfg *config.Config, s Services) {
	signIn := middleware.RequireSignIn(cfg, s.Blacklist)
	admin := middleware.IsAdmin(s.Users)

	NewAuthHandler(cfg, s.Users, s.Orders, s.Blacklist).Register(api)
	NewCategoryHandler(s.Categories, signIn, admin).Register(api)
	NewProductHandler(s.Products, s.Orders, signIn, admin).Register(api)
}
