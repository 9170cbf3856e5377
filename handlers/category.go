package handlers

import (
	"errors"
	"net/http"

	"github.com/ecomapp/storefront/internal/categories"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	svc    *categories.Service
	signIn gin.HandlerFunc
	admin  gin.HandlerFunc
}

// NewCategoryHandler takes the sign-in and admin gates guarding write routes.
func NewCategoryHandler(svc *categories.Service, signIn, admin gin.HandlerFunc) *CategoryHandler {
	return &CategoryHandler{svc: svc, signIn: signIn, admin: admin}
}

// Register routes under /category
func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/category")
	g.POST("/create-category", h.signIn, h.admin, h.Create)
	g.PUT("/update-category/:id", h.signIn, h.admin, h.Update)
	g.GET("/get-category", h.List)
	g.GET("/single-category/:slug", h.Single)
	g.DELETE("/delete-category/:id", h.signIn, h.admin, h.Delete)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	_ = c.ShouldBindJSON(&req)
	cat, err := h.svc.Create(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, categories.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	case errors.Is(err, categories.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Category Already Exists"})
		return
	case err != nil:
		serverError(c, "Error in Category", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "new category created", "category": cat})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	_ = c.ShouldBindJSON(&req)
	cat, err := h.svc.Rename(c.Request.Context(), id, req.Name)
	switch {
	case errors.Is(err, categories.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	case errors.Is(err, categories.ErrNotFound):
		notFound(c, "Category not found")
		return
	case errors.Is(err, categories.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Category Already Exists"})
		return
	case err != nil:
		serverError(c, "Error while updating category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category Updated Successfully", "category": cat})
}

func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		serverError(c, "Error while getting all categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All Categories List", "category": list})
}

func (h *CategoryHandler) Single(c *gin.Context) {
	cat, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, categories.ErrNotFound) {
		notFound(c, "Category not found")
		return
	}
	if err != nil {
		serverError(c, "Error While getting Single Category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Get Single Category Successfully", "category": cat})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	err := h.svc.Delete(c.Request.Context(), id)
	if errors.Is(err, categories.ErrNotFound) {
		notFound(c, "Category not found")
		return
	}
	if err != nil {
		serverError(c, "error while deleting category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category Deleted Successfully"})
}
