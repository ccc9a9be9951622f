package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/middleware"
	"github.com/petwell/petwell/internal/pkg/errcode"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
	"github.com/petwell/petwell/internal/pkg/response"
)

func getOwnerID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextOwnerIDKey)
	ownerID, _ := value.(string)
	return ownerID
}

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, appErr.ErrMetricsOutdated):
		// Expected guard outcome, not an error worth a log line.
		response.ErrorStatus(c, http.StatusPreconditionFailed, errcode.ErrMetricsOutdated, "METRICS_OUTDATED")
		return
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case appErr.IsNotFound(err):
		response.ErrorStatus(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrMalformedAgentOutput):
		response.Error(c, errcode.ErrAgentOutput, "agent produced unusable output")
	case errors.Is(err, appErr.ErrToolLoopExceeded), errors.Is(err, appErr.ErrAIUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("owner_id", getOwnerID(c)),
		zap.Error(err),
	)
}
