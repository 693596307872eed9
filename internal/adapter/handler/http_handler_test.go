package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
	"github.com/rl1809/clock-shop/internal/port"
)

func newTestServer(t *testing.T) (*echo.Echo, *fixture) {
	t.Helper()
	f := newFixture(t)
	e := echo.New()
	NewHTTPHandler(f.cart, f.catalog, f.appointments, f.showroom, zaptest.NewLogger(t)).RegisterRoutes(e)
	return e, f
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createSession(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[service.CartView](t, rec).SessionID
}

func TestHealthCheck(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProducts(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/products?collection=featured", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]ProductResponse](t, rec)
	require.Len(t, products, 6)
	assert.Equal(t, domain.ProductID("vintage-grandfather-clock"), products[0].ID)
	assert.Equal(t, 2499.0, products[0].Price)
	assert.Equal(t, "$2,499.00", products[0].DisplayPrice)

	rec = doJSON(t, e, http.MethodGet, "/api/products?collection=clearance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/products/royal-grandfather-clock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[ProductResponse](t, rec)
	assert.Len(t, p.Images, 4)
	assert.Len(t, p.Specifications, 5)

	rec = doJSON(t, e, http.MethodGet, "/api/products/sundial", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	e, _ := newTestServer(t)
	id := createSession(t, e)
	base := "/api/sessions/" + id + "/cart"

	rec := doJSON(t, e, http.MethodPost, base+"/items", `{"product_id":"vintage-grandfather-clock"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, base+"/items", `{"product_id":"vintage-grandfather-clock"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[service.CartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, 4998.0, view.TotalPrice)
	assert.Equal(t, "$4,998.00", view.DisplayTotal)
	assert.False(t, view.IsOpen)

	rec = doJSON(t, e, http.MethodPost, base+"/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.CartView](t, rec).IsOpen)

	rec = doJSON(t, e, http.MethodPatch, base+"/items/vintage-grandfather-clock", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[service.CartView](t, rec).TotalItems)

	rec = doJSON(t, e, http.MethodPatch, base+"/items/vintage-grandfather-clock", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.CartView](t, rec).Items)

	rec = doJSON(t, e, http.MethodDelete, base+"/items/vintage-grandfather-clock", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, base+"/close", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[service.CartView](t, rec)
	assert.False(t, view.IsOpen)
	assert.Equal(t, 0, view.TotalItems)
}

func TestCartErrors(t *testing.T) {
	e, _ := newTestServer(t)
	id := createSession(t, e)
	base := "/api/sessions/" + id + "/cart"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		errMsg string
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope/cart", "", http.StatusNotFound, "session not found"},
		{"unknown product", http.MethodPost, base + "/items", `{"product_id":"sundial"}`, http.StatusNotFound, "product not found"},
		{"missing product id", http.MethodPost, base + "/items", `{}`, http.StatusBadRequest, "product_id is required"},
		{"malformed body", http.MethodPost, base + "/items", `{"product_id":`, http.StatusBadRequest, "invalid body"},
		{"missing quantity", http.MethodPatch, base + "/items/modern-wall-clock", `{}`, http.StatusBadRequest, "quantity is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errMsg, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestAddToCart_DuplicateRequest(t *testing.T) {
	e, _ := newTestServer(t)
	base := "/api/sessions/" + createSession(t, e) + "/cart"

	body := `{"product_id":"modern-wall-clock","request_id":"click-1"}`
	rec := doJSON(t, e, http.MethodPost, base+"/items", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, base+"/items", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// bookableDate returns a weekday at least a week ahead.
func bookableDate() string {
	d := time.Now().AddDate(0, 0, 7)
	for d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(domain.DateLayout)
}

func TestBookAppointment(t *testing.T) {
	e, f := newTestServer(t)
	f.apptRepo.On("CreateAppointment", mock.Anything, mock.AnythingOfType("domain.Appointment")).Return(nil).Once()

	body := `{"service":"appraisal","date":"` + bookableDate() + `","time":"9:00 AM","first_name":"Ada","email":"ada@example.com"}`
	rec := doJSON(t, e, http.MethodPost, "/api/appointments", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[AppointmentResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "Clock Appraisal", resp.Service)
	assert.Equal(t, "30 mins", resp.Duration)
	f.apptRepo.AssertExpectations(t)
}

func TestBookAppointment_Errors(t *testing.T) {
	e, f := newTestServer(t)
	f.apptRepo.On("CreateAppointment", mock.Anything, mock.Anything).Return(port.ErrDuplicateSlot).Once()

	valid := `{"service":"appraisal","date":"` + bookableDate() + `","time":"9:00 AM","first_name":"Ada","email":"ada@example.com"}`
	rec := doJSON(t, e, http.MethodPost, "/api/appointments", valid)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/appointments", `{"service":"appraisal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "date is required")

	f.apptRepo.AssertNumberOfCalls(t, "CreateAppointment", 1)
}

func TestAppointmentOptions(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/api/appointments/options", "")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[service.AppointmentOptions](t, rec)
	assert.Len(t, opts.Services, 5)
	assert.Len(t, opts.TimeSlots, 9)
}

func TestApplyViewer(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/showroom/vintage-cuckoo-clock/view", `{"action":"zoom_in","viewer":{"zoom":1.9}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[service.ViewerResult](t, rec)
	assert.Equal(t, 2.0, res.Viewer.Zoom)
	assert.NotEmpty(t, res.Image)

	rec = doJSON(t, e, http.MethodPost, "/api/showroom/vintage-cuckoo-clock/view", `{"action":"spin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/showroom/modern-wall-clock/view", `{"action":"reset"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
