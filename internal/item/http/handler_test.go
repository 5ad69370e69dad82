package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/item"
)

const (
	ownerID = "11111111-1111-1111-1111-111111111111"
	otherID = "22222222-2222-2222-2222-222222222222"
	itemID  = "aaaaaaaa-0000-0000-0000-000000000001"
)

type stubService struct {
	item.Service

	detail  *item.Detail
	item    *item.Item
	comment *item.Comment
	err     error

	lastCreate item.CreateRequest
	lastUpdate item.UpdateRequest
}

func (s *stubService) Create(_ context.Context, req item.CreateRequest) (*item.Item, error) {
	s.lastCreate = req
	return s.item, s.err
}

func (s *stubService) GetDetail(context.Context, string, string) (*item.Detail, error) {
	return s.detail, s.err
}

func (s *stubService) Update(_ context.Context, _, _ string, req item.UpdateRequest) (*item.Item, error) {
	s.lastUpdate = req
	return s.item, s.err
}

func (s *stubService) AddComment(context.Context, string, string, string) (*item.Comment, error) {
	return s.comment, s.err
}

func newTestRouter(svc item.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, nil), auth.UserRequired())
	return r
}

func do(r *gin.Engine, method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.UserHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func drill() *item.Item {
	return &item.Item{ID: itemID, OwnerID: ownerID, Name: "Drill", Description: "Cordless", Available: true}
}

func TestCreateItem(t *testing.T) {
	t.Run("available is required", func(t *testing.T) {
		r := newTestRouter(&stubService{item: drill()})
		w := do(r, http.MethodPost, "/v1/items", `{"name":"Drill","description":"Cordless"}`, ownerID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("false availability is accepted", func(t *testing.T) {
		svc := &stubService{item: drill()}
		r := newTestRouter(svc)
		w := do(r, http.MethodPost, "/v1/items", `{"name":"Drill","description":"Cordless","available":false}`, ownerID)
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, svc.lastCreate.Available)
		assert.False(t, *svc.lastCreate.Available)
		assert.Equal(t, ownerID, svc.lastCreate.OwnerID)
	})

	t.Run("unknown owner", func(t *testing.T) {
		r := newTestRouter(&stubService{err: item.ErrOwnerNotFound})
		w := do(r, http.MethodPost, "/v1/items", `{"name":"Drill","description":"Cordless","available":true}`, ownerID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateItem(t *testing.T) {
	svc := &stubService{item: drill()}
	r := newTestRouter(svc)

	w := do(r, http.MethodPatch, "/v1/items/"+itemID, `{"available":false}`, ownerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastUpdate.Name)
	require.NotNil(t, svc.lastUpdate.Available)
	assert.False(t, *svc.lastUpdate.Available)

	svc.err = item.ErrNotOwner
	w = do(r, http.MethodPatch, "/v1/items/"+itemID, `{"name":"x"}`, otherID)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetItem(t *testing.T) {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := &stubService{detail: &item.Detail{
		Item:        drill(),
		LastBooking: &booking.Booking{ID: "b1", BookerID: otherID, Start: start, End: start.Add(time.Hour)},
		Comments:    []*item.Comment{{ID: "c1", Text: "Solid", AuthorName: "Other", CreatedAt: start}},
	}}
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/v1/items/"+itemID, "", ownerID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Drill", resp["name"])
	assert.Nil(t, resp["nextBooking"], "missing summaries render as null")
	last, ok := resp["lastBooking"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "b1", last["id"])
	assert.Len(t, resp["comments"], 1)
}

func TestAddComment(t *testing.T) {
	t.Run("text is required", func(t *testing.T) {
		r := newTestRouter(&stubService{})
		w := do(r, http.MethodPost, "/v1/items/"+itemID+"/comment", `{}`, otherID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not a past booker", func(t *testing.T) {
		r := newTestRouter(&stubService{err: item.ErrNotPastBooker})
		w := do(r, http.MethodPost, "/v1/items/"+itemID+"/comment", `{"text":"Nice"}`, otherID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("created", func(t *testing.T) {
		r := newTestRouter(&stubService{comment: &item.Comment{ID: "c1", Text: "Nice", AuthorName: "Other"}})
		w := do(r, http.MethodPost, "/v1/items/"+itemID+"/comment", `{"text":"Nice"}`, otherID)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp CommentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Other", resp.AuthorName)
	})
}
