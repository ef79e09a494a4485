package httptransport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/craftline/backoffice/internal/application/admin"
	"github.com/craftline/backoffice/internal/application/fulfillment"
	"github.com/craftline/backoffice/internal/domain/product"

	"github.com/gin-gonic/gin"
)

// PaymentConfirmer is the payment callback entry point.
type PaymentConfirmer interface {
	Execute(ctx context.Context, in fulfillment.ConfirmPaymentInput) (*fulfillment.Receipt, error)
}

// AdminService is the surface the admin console routes need.
type AdminService interface {
	SignUp(ctx context.Context, email, password string) error
	LogIn(ctx context.Context, email, password string) (string, error)
	LogOut(ctx context.Context, token string) error
	SessionEmail(ctx context.Context, token string) (string, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, name string, priceCents int64, imageName string, image io.Reader) (*product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) error
}

type Handler struct {
	confirm PaymentConfirmer
	admin   AdminService
}

func NewHandler(confirm PaymentConfirmer, adminSvc AdminService) *Handler {
	return &Handler{confirm: confirm, admin: adminSvc}
}

// Register mounts all routes on the engine. Middleware that applies to every
// route (request id, logging, metrics) is expected to be installed by main.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/payment-success", h.handlePaymentSuccess)
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	adm := r.Group("/admin")
	adm.POST("/signup", h.handleSignUp)
	adm.POST("/login", h.handleLogIn)

	authed := adm.Group("", RequireAdmin(h.admin))
	authed.POST("/logout", h.handleLogOut)
	authed.GET("/products", h.handleListProducts)
	authed.POST("/products", h.handleCreateProduct)
	authed.POST("/products/:id/stock", h.handleAdjustStock)
	authed.DELETE("/products/:id", h.handleDeleteProduct)
}

type paymentSuccessRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
	OrderNumber      string `json:"order_number" binding:"required"`
	UserID           string `json:"user_id" binding:"required"`
}

func (h *Handler) handlePaymentSuccess(c *gin.Context) {
	var req paymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required callback field"})
		return
	}

	receipt, err := h.confirm.Execute(c.Request.Context(), fulfillment.ConfirmPaymentInput{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.GatewaySignature,
		OrderNumber:      req.OrderNumber,
		UserID:           req.UserID,
	})
	if err != nil {
		status, msg := confirmStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// confirmStatus maps the workflow's error taxonomy to status classes: client
// errors never retried by the gateway, 5xx for transient failures so it does.
func confirmStatus(err error) (int, string) {
	switch {
	case errors.Is(err, fulfillment.ErrInvalidInput):
		return http.StatusBadRequest, "missing required callback field"
	case errors.Is(err, fulfillment.ErrSignatureMismatch):
		return http.StatusUnauthorized, "payment verification failed"
	case errors.Is(err, fulfillment.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, fulfillment.ErrOrderConflict):
		return http.StatusConflict, "conflicting payment for order"
	default:
		return http.StatusServiceUnavailable, "temporary failure, retry"
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) handleSignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if err := h.admin.SignUp(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, admin.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) handleLogIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	token, err := h.admin.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) handleLogOut(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		_ = h.admin.LogOut(c.Request.Context(), token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleListProducts(c *gin.Context) {
	products, err := h.admin.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) handleCreateProduct(c *gin.Context) {
	name := c.PostForm("name")
	priceCents, err := strconv.ParseInt(c.PostForm("price_cents"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_cents must be an integer"})
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	p, err := h.admin.CreateProduct(c.Request.Context(), name, priceCents, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, product.ErrInvalidName), errors.Is(err, product.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create product"})
		}
		return
	}
	c.JSON(http.StatusCreated, p)
}

type stockRequest struct {
	Action string `json:"action"`
	Delta  int    `json:"delta"`
}

func (h *Handler) handleAdjustStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock request"})
		return
	}

	delta := req.Delta
	switch req.Action {
	case "increase":
		delta = 1
	case "decrease":
		delta = -1
	case "":
		if delta == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action or delta is required"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	if err := h.admin.AdjustStock(c.Request.Context(), id, delta); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not adjust stock"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleDeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.admin.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete product"})
		return
	}
	c.Status(http.StatusNoContent)
}
