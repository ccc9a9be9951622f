package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

func newErrorTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/pets/pet-1/plan", nil)
	return c, rec
}

func TestHandleErrorMetricsOutdated(t *testing.T) {
	c, rec := newErrorTestContext(t)

	handleError(c, appErr.ErrMetricsOutdated)

	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	require.Contains(t, rec.Body.String(), "METRICS_OUTDATED")
}

func TestHandleErrorNotFound(t *testing.T) {
	c, rec := newErrorTestContext(t)

	handleError(c, appErr.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleErrorInvalidStays200(t *testing.T) {
	c, rec := newErrorTestContext(t)

	handleError(c, appErr.ErrInvalid)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid request")
}
