package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/orders"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/ecomapp/storefront/pkg/logger"
	"github.com/ecomapp/storefront/pkg/metrics"
	"github.com/ecomapp/storefront/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves accounts, the signed-in user's profile and orders, and
// the admin views over users and orders.
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	ordersSvc *orders.Service
	blacklist *tokens.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, o *orders.Service, bl *tokens.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, ordersSvc: o, blacklist: bl}
}

// Register routes under /auth, plus the admin order-status alias on rg.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	signIn := middleware.RequireSignIn(h.cfg, h.blacklist)
	admin := middleware.IsAdmin(h.usersSvc)

	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/forgot-password", h.ForgotPassword)
	a.POST("/logout", signIn, h.Logout)
	a.GET("/test", signIn, admin, func(c *gin.Context) { c.String(http.StatusOK, "Protected Routes") })
	a.GET("/user-auth", signIn, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	a.GET("/admin-auth", signIn, admin, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	a.PUT("/profile", signIn, h.UpdateProfile)
	a.GET("/orders", signIn, h.Orders)
	a.GET("/all-orders", signIn, admin, h.AllOrders)
	a.PUT("/order-status/:orderId", signIn, admin, h.UpdateOrderStatus)
	a.GET("/all-users", signIn, admin, h.AllUsers)

	rg.PUT("/order-status/:orderId", signIn, admin, h.UpdateOrderStatus)
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

const passwordTooLong = "Password must be at most 72 bytes"

// missingField returns the message for the first empty required field.
func missingField(in users.RegisterInput) string {
	fields := []struct{ value, message string }{
		{in.Name, "Name is Required"},
		{in.Email, "Email is Required"},
		{in.Password, "Password is Required"},
		{in.Phone, "Phone no is Required"},
		{in.Address, "Address is Required"},
		{in.Answer, "Answer is Required"},
	}
	for _, f := range fields {
		if f.value == "" {
			return f.message
		}
	}
	return ""
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	in := users.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
	}
	in.Normalize()
	if msg := missingField(in); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), in)
	switch {
	case errors.Is(err, users.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Already registered, please login"})
		return
	case errors.Is(err, users.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": passwordTooLong})
		return
	case err != nil:
		serverError(c, "Error in Registeration", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User Register Successfully", "user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	if req.Email == "" || req.Password == "" {
		metrics.Logins.WithLabelValues("invalid").Inc()
		badRequest(c, "Missing email or password")
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrEmailNotRegistered):
		metrics.Logins.WithLabelValues("unknown_email").Inc()
		notFound(c, "Email is not registered")
		return
	case errors.Is(err, users.ErrInvalidPassword):
		metrics.Logins.WithLabelValues("bad_password").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Password"})
		return
	case err != nil:
		serverError(c, "Error in login", err)
		return
	}
	token, err := tokens.GenerateAccessToken(h.cfg, u)
	if err != nil {
		serverError(c, "Error in login", err)
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successfully",
		"user": gin.H{
			"_id":     u.ID,
			"name":    u.Name,
			"email":   u.Email,
			"phone":   u.Phone,
			"address": u.Address,
			"role":    u.Role,
		},
		"token": token,
	})
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	_ = c.ShouldBindJSON(&req)
	switch {
	case req.Email == "":
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	case req.Answer == "":
		c.JSON(http.StatusBadRequest, gin.H{"message": "Answer is required"})
		return
	case req.NewPassword == "":
		c.JSON(http.StatusBadRequest, gin.H{"message": "New Password is required"})
		return
	}
	err := h.usersSvc.ResetPassword(c.Request.Context(), req.Email, req.Answer, req.NewPassword)
	if errors.Is(err, users.ErrWrongAnswer) {
		notFound(c, "Wrong Email Or Answer")
		return
	}
	if errors.Is(err, users.ErrPasswordTooLong) {
		badRequest(c, passwordTooLong)
		return
	}
	if err != nil {
		serverError(c, "Something went wrong", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password Reset Successfully"})
}

// Logout revokes the presented token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, raw, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing token"})
		return
	}
	ttl := h.cfg.JWT.TokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
		serverError(c, "Error in logout", err)
		return
	}
	logger.Debugf("token revoked for user %s", claims.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

type profileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	var req profileRequest
	_ = c.ShouldBindJSON(&req)
	updated, err := h.usersSvc.UpdateProfile(c.Request.Context(), uid, users.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if errors.Is(err, users.ErrPasswordTooShort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required and 6 character long"})
		return
	}
	if errors.Is(err, users.ErrPasswordTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"error": passwordTooLong})
		return
	}
	if err != nil {
		logger.Warnf("profile update for %s failed: %v", uid.Hex(), err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Error While Update profile", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated Successfully", "updatedUser": updated})
}

func (h *AuthHandler) Orders(c *gin.Context) {
	uid, _ := middleware.CurrentUserID(c)
	list, err := h.ordersSvc.ForBuyer(c.Request.Context(), uid)
	if err != nil {
		serverError(c, "Error While Geting Orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AuthHandler) AllOrders(c *gin.Context) {
	list, err := h.ordersSvc.All(c.Request.Context())
	if err != nil {
		serverError(c, "Error While Getting Orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AuthHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "orderId")
	if !ok {
		return
	}
	var req orderStatusRequest
	_ = c.ShouldBindJSON(&req)
	o, err := h.ordersSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, orders.ErrInvalidStatus):
		badRequest(c, "Invalid order status")
		return
	case errors.Is(err, orders.ErrNotFound):
		notFound(c, "Order not found")
		return
	case err != nil:
		serverError(c, "Error While Updating Order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *AuthHandler) AllUsers(c *gin.Context) {
	list, err := h.usersSvc.List(c.Request.Context())
	if err != nil {
		serverError(c, "Error While Getting Users", err)
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": list})
}
