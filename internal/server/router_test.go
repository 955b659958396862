package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-results-api/internal/handler"
	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type rejectingValidator struct{ calls int }

func (v *rejectingValidator) Validate(context.Context, string) (*models.SessionClaims, error) {
	v.calls++
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session")
}

func newTestRouter(v *rejectingValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Handlers{
		Subjects: handler.NewSubjectHandler(),
		Metrics:  handler.NewMetricsHandler(nil, nil),
	}, Options{CookieName: "sid", Sessions: v})
}

func TestRouterRegistersRoutes(t *testing.T) {
	r := newTestRouter(&rejectingValidator{})

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"GET /api/v1/results",
		"GET /api/v1/results/print",
		"GET /api/v1/subjects",
		"POST /api/v1/auth/login",
		"POST /api/v1/admin/results",
		"GET /api/v1/admin/results/export",
		"POST /api/v1/admin/students/promote",
		"PATCH /api/v1/admin/students/:id/status",
		"GET /api/v1/admin/classes/:class/roster",
	} {
		assert.True(t, registered[want], want)
	}
	assert.False(t, registered["GET /docs/*any"])
}

func TestRouterPublicRoutesNeedNoSession(t *testing.T) {
	r := newTestRouter(&rejectingValidator{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/subjects?class=Class_9", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAdminRoutesRequireSession(t *testing.T) {
	v := &rejectingValidator{}
	r := newTestRouter(v)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/students", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, v.calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/results", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, v.calls)
}
