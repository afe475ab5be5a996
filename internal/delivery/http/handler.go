package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/usecase"
)

const (
	serviceName    = "voicecart-backend"
	serviceVersion = "1.0.0"

	defaultProductLimit = 10
	maxProductLimit     = 50
	relatedLimit        = 3
	maxRecommendations  = 20
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	voice    *usecase.VoiceService
	carts    *usecase.CartService
	sessions *usecase.SessionService
	resolver *usecase.Resolver
	catalog  domain.ProductCatalog
	logger   logrus.FieldLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	voice *usecase.VoiceService,
	carts *usecase.CartService,
	sessions *usecase.SessionService,
	resolver *usecase.Resolver,
	catalog domain.ProductCatalog,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		voice:    voice,
		carts:    carts,
		sessions: sessions,
		resolver: resolver,
		catalog:  catalog,
		logger:   logger,
	}
}

// ErrorResponse is the body of every non-2xx response that has no domain result
type ErrorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	UserName string `json:"userName" binding:"required"`
}

type feedbackRequest struct {
	UserName        string `json:"userName" binding:"required"`
	Transcript      string `json:"transcript" binding:"required"`
	WasCorrect      bool   `json:"wasCorrect"`
	ActualProductID string `json:"actualProductId"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// CartLine is a cart entry joined with its catalog product
type CartLine struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Unit      domain.Unit `json:"unit,omitempty"`
	Price     float64     `json:"price"`
	Quantity  int         `json:"quantity"`
	LineTotal float64     `json:"lineTotal"`
}

// CartView is the presentation form of a cart
type CartView struct {
	UserName   string     `json:"userName"`
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ProductDetail is a product plus related recommendations
type ProductDetail struct {
	domain.Product
	Related []domain.Product `json:"related"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  serviceName,
		"version":  serviceVersion,
		"products": len(h.catalog.All()),
	})
}

// VoiceCommand handles a transcript from the speech capture layer
func (h *Handler) VoiceCommand(c *gin.Context) {
	var req domain.VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.voice.Handle(c.Request.Context(), &req)
	if err != nil {
		if result != nil {
			// the domain result still describes what happened
			h.logger.WithError(err).WithField("user", req.UserName).Error("voice command failed")
			c.JSON(statusFor(err), result)
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Login starts a session and restores the user's cart
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), req.UserName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userName":        session.UserName,
		"isReturningUser": session.Returning,
		"message":         session.Message,
		"startedAt":       session.StartedAt,
		"cart":            h.cartView(session.Cart),
	})
}

// Logout ends a session. The cart stays persisted.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), c.Param("userName")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCart returns the user's cart with product details
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("userName"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(cart))
}

// AddItem adds a catalog product by ID
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.Add(c.Request.Context(), c.Param("userName"), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(cart))
}

// RemoveItem removes quantity of a product, or the whole entry when no
// quantity is given
func (h *Handler) RemoveItem(c *gin.Context) {
	qty := math.MaxInt
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be a positive integer"})
			return
		}
		qty = n
	}

	productID := c.Param("productId")
	cart, removed, err := h.carts.Remove(c.Request.Context(), c.Param("userName"), productID, qty)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{
			"status": domain.StatusCartItemNotPresent,
			"error":  productID + " is not in the cart",
			"cart":   h.cartView(cart),
		})
		return
	}
	c.JSON(http.StatusOK, h.cartView(cart))
}

// ClearCart empties the user's cart
func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), c.Param("userName"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView(cart))
}

// SearchProducts lists catalog products matching q. An empty q lists the catalog.
func (h *Handler) SearchProducts(c *gin.Context) {
	limit, ok := h.limitParam(c, defaultProductLimit, maxProductLimit)
	if !ok {
		return
	}

	products, err := h.resolver.Search(c.Request.Context(), c.Query("q"), c.Query("lang"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":      c.Query("q"),
		"count":      len(products),
		"products":   products,
		"categories": h.catalog.Categories(),
	})
}

// GetProduct returns one product with related recommendations
func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, ProductDetail{
		Product: product,
		Related: h.catalog.Related(product.ID, relatedLimit),
	})
}

// History returns recent voice commands and the success rate
func (h *Handler) History(c *gin.Context) {
	limit, ok := h.limitParam(c, 0, math.MaxInt)
	if !ok {
		return
	}

	history, err := h.voice.History(c.Request.Context(), c.Param("userName"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// ClearHistory deletes the user's recorded commands
func (h *Handler) ClearHistory(c *gin.Context) {
	userName := c.Param("userName")
	deleted, err := h.voice.ClearHistory(c.Request.Context(), userName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userName":     userName,
		"deletedCount": deleted,
		"message":      "History cleared successfully",
	})
}

// Profile returns the user's favorite category and most added product
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.voice.Profile(c.Request.Context(), c.Param("userName"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Recommendations returns products picked from the user's add history
func (h *Handler) Recommendations(c *gin.Context) {
	limit, ok := h.limitParam(c, 0, maxRecommendations)
	if !ok {
		return
	}

	recs, err := h.voice.Recommendations(c.Request.Context(), c.Param("userName"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// CartRecommendations returns products related to what is in the cart
func (h *Handler) CartRecommendations(c *gin.Context) {
	limit, ok := h.limitParam(c, 0, maxRecommendations)
	if !ok {
		return
	}

	recs, err := h.voice.CartRecommendations(c.Request.Context(), c.Param("userName"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// Feedback records whether a voice command picked the right product
func (h *Handler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	stored, err := h.voice.SubmitFeedback(c.Request.Context(), &domain.Feedback{
		UserName:        req.UserName,
		Transcript:      req.Transcript,
		WasCorrect:      req.WasCorrect,
		ActualProductID: req.ActualProductID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      stored.ID,
		"message": "Thank you for your feedback!",
	})
}

func (h *Handler) limitParam(c *gin.Context, def, ceiling int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		return 0, false
	}
	return min(n, ceiling), true
}

func (h *Handler) cartView(cart *domain.Cart) CartView {
	view := CartView{
		UserName:  cart.UserName,
		Items:     make([]CartLine, 0, len(cart.Entries)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, e := range cart.Entries {
		line := CartLine{ProductID: e.ProductID, Name: e.ProductID, Quantity: e.Quantity}
		if p, ok := h.catalog.Get(e.ProductID); ok {
			line.Name = p.CanonicalName
			line.Unit = p.Unit
			line.Price = p.Price
			line.LineTotal = math.Round(p.Price*float64(e.Quantity)*100) / 100
		}
		view.Items = append(view.Items, line)
		view.TotalItems += e.Quantity
		view.TotalPrice += line.LineTotal
	}
	view.TotalPrice = math.Round(view.TotalPrice*100) / 100
	return view
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	entry := h.logger.WithError(err).WithField("path", c.FullPath())
	if code >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	c.JSON(code, ErrorResponse{Error: messageFor(code, err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(code int, err error) string {
	switch code {
	case http.StatusServiceUnavailable:
		return "Cart storage temporarily unavailable"
	case http.StatusGatewayTimeout:
		return "Request timed out"
	case http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}
