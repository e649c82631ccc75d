package owner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
)

type fakeOwners struct {
	owner   *model.Owner
	updates []model.UpdateOwnerRequest
	failGet bool
}

func (f *fakeOwners) AdminChatID(context.Context) (string, error) {
	if f.owner == nil {
		return "", repository.ErrNotFound
	}
	return f.owner.ChatID, nil
}

func (f *fakeOwners) Register(_ context.Context, owner *model.Owner) error {
	f.owner = owner
	return nil
}

func (f *fakeOwners) Get(context.Context) (*model.Owner, error) {
	if f.failGet {
		return nil, assert.AnError
	}
	if f.owner == nil {
		return nil, repository.ErrNotFound
	}
	return f.owner, nil
}

func (f *fakeOwners) Update(_ context.Context, _ string, req *model.UpdateOwnerRequest) error {
	f.updates = append(f.updates, *req)
	if req.ShopName != nil {
		f.owner.ShopName = *req.ShopName
	}
	return nil
}

func (f *fakeOwners) Reset(context.Context) error {
	f.owner = nil
	return nil
}

func setupRouter(owners repository.OwnerRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(owners).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestGetOwner(t *testing.T) {
	router := setupRouter(&fakeOwners{owner: &model.Owner{
		ChatID:   "111000",
		Name:     "Diego",
		ShopName: "Fade Factory",
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owner", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string       `json:"status"`
		Data   *model.Owner `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Fade Factory", resp.Data.ShopName)
}

func TestGetOwnerNotConfigured(t *testing.T) {
	router := setupRouter(&fakeOwners{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/owner", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOwner(t *testing.T) {
	owners := &fakeOwners{owner: &model.Owner{ChatID: "111000", ShopName: "Fade Factory"}}
	router := setupRouter(owners)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/owner",
		strings.NewReader(`{"shop_name":"Clean Cuts"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, owners.updates, 1)
	assert.Equal(t, "Clean Cuts", owners.owner.ShopName)
}

func TestUpdateOwnerValidation(t *testing.T) {
	router := setupRouter(&fakeOwners{owner: &model.Owner{ChatID: "111000"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/owner",
		strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOwnerRepositoryFailure(t *testing.T) {
	router := setupRouter(&fakeOwners{failGet: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/owner",
		strings.NewReader(`{"shop_name":"Clean Cuts"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
