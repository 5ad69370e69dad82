package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

const (
	testUserID    = "22222222-2222-2222-2222-222222222222"
	testItemID    = "aaaaaaaa-0000-0000-0000-000000000001"
	testBookingID = "bbbbbbbb-0000-0000-0000-000000000001"
)

// stubService answers every call with the configured booking or error and records its inputs.
type stubService struct {
	booking.Service

	booking *booking.Booking
	list    []*booking.Booking
	total   int
	err     error

	lastCreate  booking.CreateRequest
	lastList    booking.ListRequest
	lastApprove *bool
}

func (s *stubService) Create(_ context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	s.lastCreate = req
	return s.booking, s.err
}

func (s *stubService) Decide(_ context.Context, _, _ string, approve bool) (*booking.Booking, error) {
	s.lastApprove = &approve
	return s.booking, s.err
}

func (s *stubService) Get(context.Context, string, string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) ListForBooker(_ context.Context, req booking.ListRequest) ([]*booking.Booking, int, error) {
	s.lastList = req
	return s.list, s.total, s.err
}

func (s *stubService) ListForOwner(_ context.Context, req booking.ListRequest) ([]*booking.Booking, int, error) {
	s.lastList = req
	return s.list, s.total, s.err
}

func newTestRouter(t *testing.T, svc booking.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	require.NoError(t, v.RegisterValidation("booking_state", func(fl validator.FieldLevel) bool {
		return booking.IsValidState(fl.Field().String())
	}))

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, nil), auth.UserRequired())
	return r
}

func do(r *gin.Engine, method, path string, body any, userID string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.UserHeader, userID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func sampleBooking() *booking.Booking {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &booking.Booking{
		ID:          testBookingID,
		ItemID:      testItemID,
		ItemName:    "Drill",
		ItemOwnerID: "11111111-1111-1111-1111-111111111111",
		BookerID:    testUserID,
		BookerName:  "Booker",
		Start:       start,
		End:         start.Add(time.Hour),
		Status:      booking.StatusWaiting,
	}
}

func TestCreateBooking(t *testing.T) {
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	payload := map[string]any{
		"itemId": testItemID,
		"start":  start,
		"end":    start.Add(time.Hour),
	}

	t.Run("missing user header", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		w := do(r, http.MethodPost, "/v1/bookings", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed user header", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		w := do(r, http.MethodPost, "/v1/bookings", payload, "42")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing item id", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		w := do(r, http.MethodPost, "/v1/bookings", map[string]any{"start": start, "end": start.Add(time.Hour)}, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		svc := &stubService{}
		r := newTestRouter(t, svc)
		w := do(r, http.MethodPost, "/v1/bookings", map[string]any{
			"itemId": testItemID,
			"start":  start,
			"end":    start.Add(-time.Hour),
		}, testUserID)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, booking.ErrInvalidTimeRange.Message, errorMessage(t, w))
		assert.Empty(t, svc.lastCreate.ItemID, "service is not reached")
	})

	t.Run("created", func(t *testing.T) {
		svc := &stubService{booking: sampleBooking()}
		r := newTestRouter(t, svc)
		w := do(r, http.MethodPost, "/v1/bookings", payload, testUserID)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testBookingID, resp.ID)
		assert.Equal(t, "Drill", resp.Item.Name)
		assert.Equal(t, "WAITING", resp.Status)

		assert.Equal(t, testUserID, svc.lastCreate.BookerID)
		assert.Equal(t, testItemID, svc.lastCreate.ItemID)
		assert.True(t, start.Equal(svc.lastCreate.Start))
	})

	t.Run("self booking maps to 404", func(t *testing.T) {
		r := newTestRouter(t, &stubService{err: booking.ErrSelfBooking})
		w := do(r, http.MethodPost, "/v1/bookings", payload, testUserID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("infrastructure failure is hidden", func(t *testing.T) {
		r := newTestRouter(t, &stubService{err: errors.New("connection reset by peer")})
		w := do(r, http.MethodPost, "/v1/bookings", payload, testUserID)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", errorMessage(t, w))
	})
}

func TestDecideBooking(t *testing.T) {
	t.Run("approved is required", func(t *testing.T) {
		svc := &stubService{booking: sampleBooking()}
		r := newTestRouter(t, svc)
		w := do(r, http.MethodPatch, "/v1/bookings/"+testBookingID, nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.lastApprove)
	})

	t.Run("approved must be a bool", func(t *testing.T) {
		r := newTestRouter(t, &stubService{booking: sampleBooking()})
		w := do(r, http.MethodPatch, "/v1/bookings/"+testBookingID+"?approved=maybe", nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reject", func(t *testing.T) {
		b := sampleBooking()
		b.Status = booking.StatusRejected
		svc := &stubService{booking: b}
		r := newTestRouter(t, svc)

		w := do(r, http.MethodPatch, "/v1/bookings/"+testBookingID+"?approved=false", nil, testUserID)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.lastApprove)
		assert.False(t, *svc.lastApprove)
	})

	t.Run("errors", func(t *testing.T) {
		cases := map[error]int{
			booking.ErrAlreadyDecided: http.StatusBadRequest,
			booking.ErrAccessDenied:   http.StatusForbidden,
			booking.ErrNotFound:       http.StatusNotFound,
		}
		for err, code := range cases {
			r := newTestRouter(t, &stubService{err: err})
			w := do(r, http.MethodPatch, "/v1/bookings/"+testBookingID+"?approved=true", nil, testUserID)
			assert.Equal(t, code, w.Code, err.Error())
		}
	})

	t.Run("id must be a uuid", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		w := do(r, http.MethodPatch, "/v1/bookings/7?approved=true", nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBooking(t *testing.T) {
	r := newTestRouter(t, &stubService{booking: sampleBooking()})
	w := do(r, http.MethodGet, "/v1/bookings/"+testBookingID, nil, testUserID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testUserID, resp.Booker.ID)
}

func TestListBookings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := &stubService{list: []*booking.Booking{sampleBooking()}, total: 1}
		r := newTestRouter(t, svc)

		w := do(r, http.MethodGet, "/v1/bookings", nil, testUserID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, booking.ListRequest{UserID: testUserID, State: "ALL", From: 0, Size: 10}, svc.lastList)

		var page response.PageResponse[BookingResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("owner list passes paging through", func(t *testing.T) {
		svc := &stubService{}
		r := newTestRouter(t, svc)

		w := do(r, http.MethodGet, "/v1/bookings/owner?state=future&from=20&size=5", nil, testUserID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, booking.ListRequest{UserID: testUserID, State: "future", From: 20, Size: 5}, svc.lastList)
		assert.JSONEq(t, `{"items":[],"from":20,"size":5,"total":0}`, w.Body.String())
	})

	t.Run("unknown state", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		w := do(r, http.MethodGet, "/v1/bookings?state=UNSUPPORTED_STATUS", nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", errorMessage(t, w))
	})

	t.Run("bad paging", func(t *testing.T) {
		r := newTestRouter(t, &stubService{})
		for _, q := range []string{"from=-1", "size=0", "size=1000"} {
			w := do(r, http.MethodGet, "/v1/bookings?"+q, nil, testUserID)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})

	t.Run("owner without items", func(t *testing.T) {
		r := newTestRouter(t, &stubService{err: booking.ErrNoItemsFound})
		w := do(r, http.MethodGet, "/v1/bookings/owner", nil, testUserID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
