package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecomapp/storefront/internal/orders"
	"github.com/ecomapp/storefront/internal/payment"
	"github.com/ecomapp/storefront/internal/products"
	"github.com/ecomapp/storefront/internal/storage"
	"github.com/ecomapp/storefront/pkg/logger"
	"github.com/ecomapp/storefront/pkg/metrics"
	"github.com/ecomapp/storefront/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductHandler serves the catalogue and checkout.
type ProductHandler struct {
	products *products.Service
	orders   *orders.Service
	signIn   gin.HandlerFunc
	admin    gin.HandlerFunc
}

func NewProductHandler(p *products.Service, o *orders.Service, signIn, admin gin.HandlerFunc) *ProductHandler {
	return &ProductHandler{products: p, orders: o, signIn: signIn, admin: admin}
}

// Register routes under /product
func (h *ProductHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/product")
	g.POST("/create-product", h.signIn, h.admin, h.Create)
	g.PUT("/update-product/:pid", h.signIn, h.admin, h.Update)
	g.DELETE("/delete-product/:pid", h.signIn, h.admin, h.Delete)
	g.GET("/get-product", h.List)
	g.GET("/get-product/:slug", h.Single)
	g.GET("/product-photo/:pid", h.Photo)
	g.POST("/product-filters", h.Filters)
	g.GET("/product-count", h.Count)
	g.GET("/product-list/:page", h.Page)
	g.GET("/search/:keyword", h.Search)
	g.GET("/related-product/:pid/:cid", h.Related)
	g.GET("/product-category/:slug", h.ByCategory)
	g.GET("/braintree/token", h.ClientToken)
	g.POST("/braintree/payment", h.signIn, h.Payment)
}

// parseProductForm reads the multipart fields. It returns a non-empty
// message when a field is missing or malformed.
func parseProductForm(c *gin.Context) (products.Input, *products.Photo, string) {
	var in products.Input
	required := []struct{ field, message string }{
		{"name", "Name is Required"},
		{"description", "Description is Required"},
		{"price", "Price is Required"},
		{"category", "Category is Required"},
		{"quantity", "Quantity is Required"},
	}
	for _, r := range required {
		if strings.TrimSpace(c.PostForm(r.field)) == "" {
			return in, nil, r.message
		}
	}
	in.Name = c.PostForm("name")
	in.Description = c.PostForm("description")

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		return in, nil, "Price must be a non-negative number"
	}
	in.Price = price
	cat, err := primitive.ObjectIDFromHex(c.PostForm("category"))
	if err != nil {
		return in, nil, "Category must be a valid id"
	}
	in.Category = cat
	qty, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil || qty < 0 {
		return in, nil, "Quantity must be a non-negative integer"
	}
	in.Quantity = qty
	in.Shipping = parseShipping(c.PostForm("shipping"))

	fh, err := c.FormFile("photo")
	if err != nil {
		return in, nil, ""
	}
	if fh.Size > products.MaxPhotoSize {
		return in, nil, "photo is Required and should be less then 1mb"
	}
	f, err := fh.Open()
	if err != nil {
		return in, nil, "photo could not be read"
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, products.MaxPhotoSize+1))
	if err != nil {
		return in, nil, "photo could not be read"
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return in, &products.Photo{Data: data, ContentType: ct}, ""
}

func parseShipping(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// writeSaveError maps service errors from create and update.
func writeSaveError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, products.ErrPhotoTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is Required and should be less then 1mb"})
	case errors.Is(err, products.ErrCategoryNotFound):
		badRequest(c, "Category not found")
	case errors.Is(err, products.ErrNotFound):
		notFound(c, "Product not found")
	default:
		serverError(c, message, err)
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	in, photo, msg := parseProductForm(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	p, err := h.products.Create(c.Request.Context(), in, photo)
	if err != nil {
		writeSaveError(c, err, "Error in creating product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product Created Successfully", "products": p})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "pid")
	if !ok {
		return
	}
	in, photo, msg := parseProductForm(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	p, err := h.products.Update(c.Request.Context(), id, in, photo)
	if err != nil {
		writeSaveError(c, err, "Error in updating product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product Updated Successfully", "products": p})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "pid")
	if !ok {
		return
	}
	err := h.products.Delete(c.Request.Context(), id)
	if errors.Is(err, products.ErrNotFound) {
		notFound(c, "Product not found")
		return
	}
	if err != nil {
		serverError(c, "Error while deleting product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product Deleted successfully"})
}

func (h *ProductHandler) List(c *gin.Context) {
	list, err := h.products.Latest(c.Request.Context())
	if err != nil {
		serverError(c, "Error in getting products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "counTotal": len(list), "message": "All Products", "products": list})
}

func (h *ProductHandler) Single(c *gin.Context) {
	p, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, products.ErrNotFound) {
		notFound(c, "Product not found")
		return
	}
	if err != nil {
		serverError(c, "Error while getting single product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Single Product Fetched", "product": p})
}

func (h *ProductHandler) Photo(c *gin.Context) {
	id, ok := objectIDParam(c, "pid")
	if !ok {
		return
	}
	data, ct, err := h.products.Photo(c.Request.Context(), id)
	if errors.Is(err, products.ErrNotFound) || errors.Is(err, products.ErrNoPhoto) || errors.Is(err, storage.ErrNotFound) {
		notFound(c, "Photo not found")
		return
	}
	if err != nil {
		serverError(c, "Error while getting photo", err)
		return
	}
	c.Data(http.StatusOK, ct, data)
}

type filterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

func (h *ProductHandler) Filters(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Error While Filtering Products")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.Checked))
	for _, s := range req.Checked {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			badRequest(c, fmt.Sprintf("Invalid category id %q", s))
			return
		}
		ids = append(ids, id)
	}
	var min, max *float64
	if len(req.Radio) == 2 {
		min, max = &req.Radio[0], &req.Radio[1]
	} else if len(req.Radio) != 0 {
		badRequest(c, "radio must hold a minimum and a maximum price")
		return
	}
	list, err := h.products.FilterBy(c.Request.Context(), ids, min, max)
	if err != nil {
		serverError(c, "Error While Filtering Products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": list})
}

func (h *ProductHandler) Count(c *gin.Context) {
	n, err := h.products.Count(c.Request.Context())
	if err != nil {
		serverError(c, "Error in product count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": n})
}

func (h *ProductHandler) Page(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		badRequest(c, "Invalid page")
		return
	}
	list, err := h.products.Page(c.Request.Context(), page)
	if err != nil {
		serverError(c, "Error in per page listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": list})
}

func (h *ProductHandler) Search(c *gin.Context) {
	list, err := h.products.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		serverError(c, "Error In Search Product API", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Related(c *gin.Context) {
	pid, ok := objectIDParam(c, "pid")
	if !ok {
		return
	}
	cid, ok := objectIDParam(c, "cid")
	if !ok {
		return
	}
	list, err := h.products.Related(c.Request.Context(), pid, cid)
	if err != nil {
		serverError(c, "Error while getting related products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": list})
}

func (h *ProductHandler) ByCategory(c *gin.Context) {
	cat, list, err := h.products.ByCategorySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, products.ErrCategoryNotFound) {
		notFound(c, "Category not found")
		return
	}
	if err != nil {
		serverError(c, "Error While Getting products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": cat, "products": list})
}

func (h *ProductHandler) ClientToken(c *gin.Context) {
	tok, err := h.orders.ClientToken(c.Request.Context())
	if err != nil {
		serverError(c, "Error while generating client token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientToken": tok})
}

type cartItem struct {
	ID string `json:"_id"`
}

type paymentRequest struct {
	Nonce string     `json:"nonce"`
	Cart  []cartItem `json:"cart"`
}

func (h *ProductHandler) Payment(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid payment request")
		return
	}
	cart := make([]primitive.ObjectID, 0, len(req.Cart))
	for _, item := range req.Cart {
		id, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			badRequest(c, fmt.Sprintf("Invalid product id %q", item.ID))
			return
		}
		cart = append(cart, id)
	}
	o, err := h.orders.Checkout(c.Request.Context(), uid, req.Nonce, cart)
	switch {
	case errors.Is(err, orders.ErrEmptyCart), errors.Is(err, orders.ErrMissingNonce), errors.Is(err, orders.ErrUnknownProduct):
		badRequest(c, err.Error())
		return
	case errors.Is(err, payment.ErrDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"ok": false, "error": err.Error()})
		return
	case err != nil:
		serverError(c, "Error while processing payment", err)
		return
	}
	metrics.OrdersPlaced.Inc()
	logger.Infof("order %s placed by %s for %s", o.ID.Hex(), uid.Hex(), o.Payment.Amount)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
