package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
)

type HTTPHandler struct {
	cart         *service.CartService
	catalog      *service.CatalogService
	appointments *service.AppointmentService
	showroom     *service.ShowroomService
	logger       *zap.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ProductResponse struct {
	ID             domain.ProductID       `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Tag            string                 `json:"tag"`
	Collection     domain.Collection      `json:"collection"`
	Image          string                 `json:"image,omitempty"`
	Images         []string               `json:"images,omitempty"`
	Price          float64                `json:"price"`
	Currency       string                 `json:"currency"`
	DisplayPrice   string                 `json:"display_price"`
	Specifications []domain.Specification `json:"specifications,omitempty"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	RequestID string `json:"request_id"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type AppointmentRequest struct {
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ClockType string `json:"clock_type"`
	Issue     string `json:"issue"`
	Notes     string `json:"notes"`
}

type AppointmentResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Service     string `json:"service"`
	Duration    string `json:"duration"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	Time        string `json:"time"`
	Email       string `json:"email"`
}

type ViewerRequest struct {
	Action string        `json:"action"`
	Delta  float64       `json:"delta"`
	Viewer domain.Viewer `json:"viewer"`
}

func NewHTTPHandler(
	cart *service.CartService,
	catalog *service.CatalogService,
	appointments *service.AppointmentService,
	showroom *service.ShowroomService,
	logger *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		cart:         cart,
		catalog:      catalog,
		appointments: appointments,
		showroom:     showroom,
		logger:       logger,
	}
}

func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	api.POST("/sessions", h.createSession)
	cart := api.Group("/sessions/:session/cart")
	cart.GET("", h.getCart)
	cart.POST("/items", h.addToCart)
	cart.PATCH("/items/:product_id", h.updateQuantity)
	cart.DELETE("/items/:product_id", h.removeFromCart)
	cart.POST("/open", h.openCart)
	cart.POST("/close", h.closeCart)

	api.GET("/appointments/options", h.appointmentOptions)
	api.POST("/appointments", h.bookAppointment)

	api.POST("/showroom/:id/view", h.applyViewer)
}

func (h *HTTPHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) listProducts(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context(), c.QueryParam("collection"))
	if err != nil {
		return h.writeError(c, err)
	}

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) getProduct(c echo.Context) error {
	p, err := h.catalog.Get(c.Request().Context(), domain.ProductID(c.Param("id")))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *HTTPHandler) createSession(c echo.Context) error {
	out, err := h.cart.CreateSession(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *HTTPHandler) getCart(c echo.Context) error {
	out, err := h.cart.GetCart(c.Request().Context(), c.Param("session"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) addToCart(c echo.Context) error {
	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product_id is required"})
	}

	out, err := h.cart.AddToCart(c.Request().Context(), c.Param("session"), domain.ProductID(req.ProductID), req.RequestID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) updateQuantity(c echo.Context) error {
	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity is required"})
	}

	out, err := h.cart.UpdateQuantity(c.Request().Context(), c.Param("session"), domain.ProductID(c.Param("product_id")), *req.Quantity)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) removeFromCart(c echo.Context) error {
	out, err := h.cart.RemoveFromCart(c.Request().Context(), c.Param("session"), domain.ProductID(c.Param("product_id")))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) openCart(c echo.Context) error {
	out, err := h.cart.OpenCart(c.Request().Context(), c.Param("session"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) closeCart(c echo.Context) error {
	out, err := h.cart.CloseCart(c.Request().Context(), c.Param("session"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) appointmentOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.appointments.Options())
}

func (h *HTTPHandler) bookAppointment(c echo.Context) error {
	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	conf, err := h.appointments.Book(c.Request().Context(), domain.AppointmentRequest{
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		ClockType: req.ClockType,
		Issue:     req.Issue,
		Notes:     req.Notes,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, AppointmentResponse{
		ID:          conf.Appointment.ID,
		Status:      string(conf.Appointment.Status),
		Service:     conf.ServiceLabel,
		Duration:    conf.Duration,
		Date:        conf.Appointment.Date.Format(domain.DateLayout),
		DisplayDate: conf.DisplayDate,
		Time:        conf.Appointment.Time,
		Email:       conf.Appointment.Email,
	})
}

func (h *HTTPHandler) applyViewer(c echo.Context) error {
	var req ViewerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.showroom.Apply(c.Request().Context(), domain.ProductID(c.Param("id")), req.Viewer, domain.ViewerAction(req.Action), req.Delta)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status, message = http.StatusNotFound, "session not found"
	case errors.Is(err, service.ErrProductNotFound):
		status, message = http.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrNotInShowroom):
		status, message = http.StatusNotFound, "product is not in the showroom"
	case errors.Is(err, service.ErrDuplicateRequest):
		status, message = http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrSlotTaken):
		status, message = http.StatusConflict, "time slot already booked"
	case errors.Is(err, service.ErrInvalidAppointment):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCollection):
		status, message = http.StatusBadRequest, "invalid collection"
	case errors.Is(err, domain.ErrUnknownViewerAction):
		status, message = http.StatusBadRequest, "unknown viewer action"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		status, message = http.StatusUnprocessableEntity, "product currency does not match the cart"
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(status, ErrorResponse{Error: message})
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Tag:            p.Tag,
		Collection:     p.Collection,
		Image:          p.Image,
		Images:         p.Images,
		Price:          p.Price.Float64(),
		Currency:       p.Price.Currency,
		DisplayPrice:   p.Price.Format(),
		Specifications: p.Specifications,
	}
}
