package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fevilela/GymFeedback/internal/common"
	"github.com/fevilela/GymFeedback/internal/config"
	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/fevilela/GymFeedback/internal/services"
	"github.com/fevilela/GymFeedback/internal/store"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Feedback.DedupWindow = 7 * 24 * time.Hour
	cfg.Feedback.Units = []string{"Unidade Centro", "Unidade Perimetral"}
	return cfg
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func newFeedbackFixture(t *testing.T) (*FeedbackHandler, *CollaboratorHandler, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	state := common.ServerState{Config: testConfig(), Store: mem}
	svc := services.NewFeedbackService(mem, state.Config.Feedback.DedupWindow)
	return NewFeedbackHandler(state, svc), NewCollaboratorHandler(state), mem
}

func TestSubmitFeedbackHandler(t *testing.T) {
	e := newEcho()
	feedbacks, _, mem := newFeedbackFixture(t)

	ana := &models.Collaborator{Name: "Ana Silva", Role: models.RoleReceptionist, Unit: "Unidade Centro", Active: true}
	require.NoError(t, mem.CreateCollaborator(ana))

	body := fmt.Sprintf(`{"category":"Reception","personId":%d,"rating":5,"message":"Ótima!","userEmail":"a@x.com"}`, ana.ID)
	c, rec := jsonRequest(e, http.MethodPost, "/api/feedbacks", body)
	require.NoError(t, feedbacks.Submit(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	payload := rec.Body.String()
	assert.Equal(t, int64(5), gjson.Get(payload, "rating").Int())
	assert.Equal(t, "Ana Silva", gjson.Get(payload, "personName").String())
	assert.Equal(t, "Unidade Centro", gjson.Get(payload, "unit").String())
	assert.True(t, gjson.Get(payload, "id").Exists())

	// Same person+email straight away is a duplicate
	c, _ = jsonRequest(e, http.MethodPost, "/api/feedbacks", body)
	err := feedbacks.Submit(c)
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestSubmitFeedbackHandlerValidation(t *testing.T) {
	e := newEcho()
	feedbacks, _, _ := newFeedbackFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing rating", `{"category":"Other"}`},
		{"rating out of range", `{"category":"Other","rating":9}`},
		{"missing category", `{"rating":4}`},
		{"unknown category", `{"category":"Sauna","rating":4}`},
		{"bad email", `{"category":"Other","rating":4,"userEmail":"nope"}`},
		{"person category without person", `{"category":"Reception","rating":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := jsonRequest(e, http.MethodPost, "/api/feedbacks", tt.body)
			err := feedbacks.Submit(c)
			assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
		})
	}
}

func TestCollaboratorHandlers(t *testing.T) {
	e := newEcho()
	_, collaborators, _ := newFeedbackFixture(t)

	// Create
	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/collaborators",
		`{"name":"Carlos Oliveira","role":"Instructor","unit":"Unidade Centro"}`)
	require.NoError(t, collaborators.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	id := gjson.Get(rec.Body.String(), "id").Int()
	assert.True(t, gjson.Get(rec.Body.String(), "active").Bool(), "active defaults to true")

	// Unknown role and unit are rejected
	c, _ = jsonRequest(e, http.MethodPost, "/api/auth/collaborators",
		`{"name":"X","role":"Janitor","unit":"Unidade Centro"}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, collaborators.Create(c)))

	c, _ = jsonRequest(e, http.MethodPost, "/api/auth/collaborators",
		`{"name":"X","role":"Instructor","unit":"Unidade Norte"}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, collaborators.Create(c)))

	// Deactivate via partial update
	c, rec = jsonRequest(e, http.MethodPut, "/", `{"active":false}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", id))
	require.NoError(t, collaborators.Update(c))
	assert.False(t, gjson.Get(rec.Body.String(), "active").Bool())
	assert.Equal(t, "Carlos Oliveira", gjson.Get(rec.Body.String(), "name").String(), "other fields untouched")

	// Inactive collaborators drop out of the public roster
	c, rec = jsonRequest(e, http.MethodGet, "/api/collaborators?active=true", "")
	require.NoError(t, collaborators.List(c))
	assert.Equal(t, int64(0), gjson.Get(rec.Body.String(), "#").Int())

	c, rec = jsonRequest(e, http.MethodGet, "/api/collaborators", "")
	require.NoError(t, collaborators.List(c))
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "#").Int())

	// Missing IDs surface as 404
	c, _ = jsonRequest(e, http.MethodPut, "/", `{"name":"Y"}`)
	c.SetParamNames("id")
	c.SetParamValues("999")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, collaborators.Update(c)))

	c, _ = jsonRequest(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("999")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, collaborators.Delete(c)))

	// Delete
	c, rec = jsonRequest(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", id))
	require.NoError(t, collaborators.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	e := newEcho()
	feedbacks, _, mem := newFeedbackFixture(t)

	ana := &models.Collaborator{Name: "Ana Silva", Role: models.RoleReceptionist, Unit: "Unidade Centro", Active: true}
	require.NoError(t, mem.CreateCollaborator(ana))

	now := time.Now()
	entries := []models.Feedback{
		{Category: models.CategoryReception, PersonID: &ana.ID, PersonName: ana.Name, Rating: 5, Unit: ana.Unit, Date: now},
		{Category: models.CategoryReception, PersonID: &ana.ID, PersonName: ana.Name, Rating: 3, Unit: ana.Unit, Date: now},
		{Category: models.CategoryEquipment, Rating: 1, Unit: "Unidade Perimetral", Date: now},
	}
	for i := range entries {
		require.NoError(t, mem.CreateFeedback(&entries[i]))
	}

	c, rec := jsonRequest(e, http.MethodGet, "/api/auth/dashboard", "")
	require.NoError(t, feedbacks.Dashboard(c))

	payload := rec.Body.String()
	assert.Equal(t, int64(3), gjson.Get(payload, "totalCount").Int())
	assert.Equal(t, "3.0", gjson.Get(payload, "averageRating").String())
	assert.Equal(t, int64(3), gjson.Get(payload, "todayCount").Int())
	assert.Equal(t, int64(5), gjson.Get(payload, "ratingHistogram.#").Int())
	assert.Equal(t, "Ana Silva", gjson.Get(payload, "topStaff.0.name").String())

	// Unit filter narrows the set
	c, rec = jsonRequest(e, http.MethodGet, "/api/auth/dashboard?unit=Unidade+Centro", "")
	require.NoError(t, feedbacks.Dashboard(c))
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "totalCount").Int())
	assert.Equal(t, "4.0", gjson.Get(rec.Body.String(), "averageRating").String())

	// A "to" without a "from" is ignored, not rejected
	c, rec = jsonRequest(e, http.MethodGet, "/api/auth/dashboard?to=2000-01-01", "")
	require.NoError(t, feedbacks.Dashboard(c))
	assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "totalCount").Int())

	// Malformed dates are rejected
	c, _ = jsonRequest(e, http.MethodGet, "/api/auth/dashboard?from=12-03-2025", "")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, feedbacks.Dashboard(c)))
}

type mapDashboardCache struct {
	entries       map[string][]byte
	invalidations int
}

func newMapDashboardCache() *mapDashboardCache {
	return &mapDashboardCache{entries: map[string][]byte{}}
}

func (c *mapDashboardCache) Get(_ context.Context, key string) ([]byte, bool) {
	payload, ok := c.entries[key]
	return payload, ok
}

func (c *mapDashboardCache) Set(_ context.Context, key string, payload []byte) {
	c.entries[key] = payload
}

func (c *mapDashboardCache) Invalidate(_ context.Context) {
	c.invalidations++
	c.entries = map[string][]byte{}
}

func TestDashboardCacheInvalidatedOnSubmit(t *testing.T) {
	e := newEcho()

	mem := store.NewMemory()
	cache := newMapDashboardCache()
	state := common.ServerState{Config: testConfig(), Store: mem, Cache: cache}
	svc := services.NewFeedbackService(mem, state.Config.Feedback.DedupWindow)
	feedbacks := NewFeedbackHandler(state, svc)

	c, rec := jsonRequest(e, http.MethodGet, "/api/auth/dashboard", "")
	require.NoError(t, feedbacks.Dashboard(c))
	assert.Equal(t, int64(0), gjson.Get(rec.Body.String(), "totalCount").Int())
	assert.Len(t, cache.entries, 1)

	// Data written behind the handler's back is masked by the cached payload
	extra := models.Feedback{Category: models.CategoryOther, Rating: 4, Date: time.Now()}
	require.NoError(t, mem.CreateFeedback(&extra))

	c, rec = jsonRequest(e, http.MethodGet, "/api/auth/dashboard", "")
	require.NoError(t, feedbacks.Dashboard(c))
	assert.Equal(t, int64(0), gjson.Get(rec.Body.String(), "totalCount").Int())

	// A submission drops every cached payload, so the next fetch recomputes
	c, _ = jsonRequest(e, http.MethodPost, "/api/feedbacks", `{"category":"Other","rating":5}`)
	require.NoError(t, feedbacks.Submit(c))
	assert.Equal(t, 1, cache.invalidations)
	assert.Empty(t, cache.entries)

	c, rec = jsonRequest(e, http.MethodGet, "/api/auth/dashboard", "")
	require.NoError(t, feedbacks.Dashboard(c))
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "totalCount").Int())
}

func TestDashboardCacheInvalidatedOnCollaboratorChange(t *testing.T) {
	e := newEcho()

	mem := store.NewMemory()
	cache := newMapDashboardCache()
	state := common.ServerState{Config: testConfig(), Store: mem, Cache: cache}
	collaborators := NewCollaboratorHandler(state)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/collaborators",
		`{"name":"Ana Silva","role":"Receptionist","unit":"Unidade Centro"}`)
	require.NoError(t, collaborators.Create(c))
	assert.Equal(t, 1, cache.invalidations)

	id := gjson.Get(rec.Body.String(), "id").String()

	c, _ = jsonRequest(e, http.MethodPut, "/", `{"active":false}`)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, collaborators.Update(c))
	assert.Equal(t, 2, cache.invalidations)

	c, _ = jsonRequest(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, collaborators.Delete(c))
	assert.Equal(t, 3, cache.invalidations)
}

var loginDBSeq atomic.Int64

func TestLoginHandler(t *testing.T) {
	e := newEcho()

	dsn := fmt.Sprintf("file:logintest%d?mode=memory&cache=shared", loginDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, models.EnsureAdminUser(db, "admin", "admin"))

	auth := NewAuthHandler(db, testConfig(), NewJwtAuth("test-secret"), nil)

	c, rec := jsonRequest(e, http.MethodPost, "/api/login", `{"username":"admin","password":"admin"}`)
	require.NoError(t, auth.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "token").String())

	c, _ = jsonRequest(e, http.MethodPost, "/api/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, auth.Login(c)))

	c, _ = jsonRequest(e, http.MethodPost, "/api/login", `{"username":"ghost","password":"admin"}`)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, auth.Login(c)))

	c, _ = jsonRequest(e, http.MethodPost, "/api/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, auth.Login(c)))
}
