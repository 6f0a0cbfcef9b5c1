package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/booking"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	carts     *cart.Service
	checkouts *checkout.Manager
	catalog   catalog.Catalog
	store     *store.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(carts *cart.Service, checkouts *checkout.Manager, cat catalog.Catalog, st *store.Store) *Handler {
	return &Handler{
		carts:     carts,
		checkouts: checkouts,
		catalog:   cat,
		store:     st,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/events", h.listEvents)
		v1.GET("/events/featured", h.featuredEvents)
		v1.GET("/events/upcoming", h.upcomingEvents)
		v1.GET("/events/search", h.searchEvents)
		v1.GET("/events/categories", h.eventCategories)
		v1.GET("/events/tags", h.eventTags)
		v1.GET("/events/category/:category", h.eventsByCategory)
		v1.GET("/events/tag/:tag", h.eventsByTag)
		v1.GET("/events/venue/:venueID", h.eventsByVenue)
		v1.GET("/events/:idOrSlug", h.getEvent)
		v1.GET("/events/:idOrSlug/ticket-types", h.eventTicketTypes)

		v1.GET("/merchandise", h.listMerchandise)
		v1.GET("/merchandise/category/:category", h.merchandiseByCategory)
		v1.GET("/merchandise/:id", h.getMerchandiseItem)

		v1.GET("/carts/:sessionID", h.getCart)
		v1.POST("/carts/:sessionID/tickets", h.addTicket)
		v1.POST("/carts/:sessionID/merchandise", h.addMerchandise)
		v1.PATCH("/carts/:sessionID/items/:itemID", h.updateQuantity)
		v1.DELETE("/carts/:sessionID/items/:itemID", h.removeItem)
		v1.DELETE("/carts/:sessionID", h.clearCart)
		v1.POST("/carts/:sessionID/toggle", h.toggleCart)
		v1.PUT("/carts/:sessionID/visibility", h.setCartVisibility)

		v1.POST("/checkouts", h.startCheckout)
		v1.GET("/checkouts/:id", h.getCheckout)
		v1.POST("/checkouts/:id/details", h.submitDetails)
		v1.POST("/checkouts/:id/payment", h.submitPayment)
		v1.DELETE("/checkouts/:id", h.closeCheckout)

		v1.POST("/offerings/:sessionID", h.storeOffering)

		v1.POST("/bookings", h.createBooking)

		v1.GET("/purchases/:confirmationCode", h.getPurchase)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// --- Events ---

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) featuredEvents(c *gin.Context) {
	limit := queryInt(c, "limit", 3)
	events, err := h.catalog.FeaturedEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list featured events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) upcomingEvents(c *gin.Context) {
	limit := queryInt(c, "limit", 6)
	events, err := h.catalog.UpcomingEvents(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list upcoming events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) searchEvents(c *gin.Context) {
	query := c.Query("q")
	events, err := h.catalog.SearchEvents(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) eventCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) eventTags(c *gin.Context) {
	tags, err := h.catalog.Tags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *Handler) eventsByCategory(c *gin.Context) {
	events, err := h.catalog.EventsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) eventsByTag(c *gin.Context) {
	events, err := h.catalog.EventsByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) eventsByVenue(c *gin.Context) {
	events, err := h.catalog.EventsByVenue(c.Request.Context(), c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) getEvent(c *gin.Context) {
	event, err := h.catalog.GetEvent(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (h *Handler) eventTicketTypes(c *gin.Context) {
	event, err := h.catalog.GetEvent(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	ticketTypes, err := h.catalog.EventTicketTypes(c.Request.Context(), event.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load ticket types"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_types": ticketTypes})
}

// --- Merchandise ---

func (h *Handler) listMerchandise(c *gin.Context) {
	items, err := h.catalog.ListMerchandise(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list merchandise"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) merchandiseByCategory(c *gin.Context) {
	items, err := h.catalog.MerchandiseByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list merchandise"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getMerchandiseItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}
	item, err := h.catalog.GetMerchandiseItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// --- Cart ---

type addTicketRequest struct {
	EventID      string `json:"event_id" binding:"required"`
	TicketTypeID int64  `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// addTicket prices the line server-side from the catalog so clients cannot
// submit their own prices.
func (h *Handler) addTicket(c *gin.Context) {
	var req addTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	event, err := h.catalog.GetEvent(c.Request.Context(), req.EventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.IsSoldOut {
		c.JSON(http.StatusConflict, gin.H{"error": "Event is sold out"})
		return
	}

	var ticketType *models.TicketType
	for i := range event.TicketTypes {
		if event.TicketTypes[i].ID == req.TicketTypeID {
			ticketType = &event.TicketTypes[i]
			break
		}
	}
	if ticketType == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
		return
	}
	if !ticketType.Available {
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket type is sold out"})
		return
	}

	summary, err := h.carts.AddTicket(c.Request.Context(), c.Param("sessionID"), models.LineItem{
		Kind:         models.KindTicket,
		Name:         event.Title + " - " + ticketType.Name,
		UnitPrice:    ticketType.Price,
		Quantity:     req.Quantity,
		EventID:      event.ID,
		EventName:    event.Title,
		EventDate:    event.Date,
		TicketTypeID: ticketType.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

type addMerchandiseRequest struct {
	CatalogItemID int64  `json:"catalog_item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	VariantLabel  string `json:"variant_label,omitempty"`
}

func (h *Handler) addMerchandise(c *gin.Context) {
	var req addMerchandiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.catalog.GetMerchandiseItem(c.Request.Context(), req.CatalogItemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if !item.InStock {
		c.JSON(http.StatusConflict, gin.H{"error": "Item is out of stock"})
		return
	}

	summary, err := h.carts.AddMerchandise(c.Request.Context(), c.Param("sessionID"), models.LineItem{
		Kind:          models.KindMerchandise,
		Name:          item.Name,
		UnitPrice:     item.Price,
		Quantity:      req.Quantity,
		CatalogItemID: item.ID,
		ImageRef:      item.ImageRef,
		VariantLabel:  req.VariantLabel,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add merchandise"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

func (h *Handler) getCart(c *gin.Context) {
	summary := h.carts.Get(c.Request.Context(), c.Param("sessionID"))
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	summary, err := h.carts.UpdateQuantity(c.Request.Context(), c.Param("sessionID"), c.Param("itemID"), req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quantity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

func (h *Handler) removeItem(c *gin.Context) {
	summary, err := h.carts.Remove(c.Request.Context(), c.Param("sessionID"), c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

func (h *Handler) clearCart(c *gin.Context) {
	summary, err := h.carts.Clear(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

func (h *Handler) toggleCart(c *gin.Context) {
	summary := h.carts.Toggle(c.Request.Context(), c.Param("sessionID"))
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

type setVisibilityRequest struct {
	Open bool `json:"open"`
}

func (h *Handler) setCartVisibility(c *gin.Context) {
	var req setVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	summary := h.carts.SetOpen(c.Request.Context(), c.Param("sessionID"), req.Open)
	c.JSON(http.StatusOK, gin.H{"cart": summary})
}

// --- Checkout ---

func (h *Handler) startCheckout(c *gin.Context) {
	var req checkout.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sess, err := h.checkouts.Start(c.Request.Context(), req)
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"checkout": sess})
}

func (h *Handler) getCheckout(c *gin.Context) {
	sess, err := h.checkouts.Get(c.Param("id"))
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": sess, "processing": sess.Processing()})
}

func (h *Handler) submitDetails(c *gin.Context) {
	var req checkout.DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sess, fieldErrors, err := h.checkouts.SubmitDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	if !fieldErrors.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"checkout": sess, "errors": fieldErrors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": sess})
}

func (h *Handler) submitPayment(c *gin.Context) {
	var req checkout.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sess, fieldErrors, err := h.checkouts.SubmitPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.checkoutError(c, err)
		return
	}
	if !fieldErrors.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"checkout": sess, "errors": fieldErrors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": sess})
}

func (h *Handler) closeCheckout(c *gin.Context) {
	h.checkouts.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) storeOffering(c *gin.Context) {
	var off checkout.Offering
	if err := c.ShouldBindJSON(&off); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if off.Name == "" || off.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Offering requires a name and a positive price"})
		return
	}
	if err := h.checkouts.StoreOffering(c.Request.Context(), c.Param("sessionID"), off); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store offering"})
		return
	}
	c.Status(http.StatusNoContent)
}

// checkoutError maps flow errors to HTTP status codes.
func (h *Handler) checkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrNotFound),
		errors.Is(err, checkout.ErrEventNotFound),
		errors.Is(err, checkout.ErrNoOffering):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrSoldOut),
		errors.Is(err, checkout.ErrWrongStep),
		errors.Is(err, checkout.ErrProcessing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout operation failed", "details": err.Error()})
	}
}

// --- Bookings ---

func (h *Handler) createBooking(c *gin.Context) {
	var req booking.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if fieldErrors := req.Validate(); !fieldErrors.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrors})
		return
	}

	record := &models.BookingRequest{
		RequestType:       req.RequestType,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Message:           req.Message,
		EventDate:         req.EventDate,
		EventType:         req.EventType,
		SongGenre:         req.SongGenre,
		CollaborationType: req.CollaborationType,
	}
	if err := h.store.CreateBookingRequest(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save request"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": record})
}

// --- Purchases ---

func (h *Handler) getPurchase(c *gin.Context) {
	purchase, err := h.store.GetPurchaseByConfirmationCode(c.Request.Context(), c.Param("confirmationCode"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchase"})
		return
	}
	if purchase == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
