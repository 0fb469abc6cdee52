package handler

import (
	"errors"
	"net/http"

	"docflow/internal/service"
	"docflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service sentinel errors onto HTTP statuses. Anything
// unrecognized is a 500 with the wrapped message.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrCostCenterDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyApproved),
		errors.Is(err, service.ErrAlreadySuspended),
		errors.Is(err, service.ErrNotSuspended),
		errors.Is(err, service.ErrDocumentSuspended),
		errors.Is(err, service.ErrPhaseLocked),
		errors.Is(err, service.ErrPhaseReadOnly),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateCode),
		errors.Is(err, service.ErrReferenceNotApproved),
		errors.Is(err, service.ErrAlreadyReviewed):
		status = http.StatusConflict
	}

	c.JSON(status, response.Error(status, err.Error()))
}

// currentUserID pulls the authenticated user id set by the auth
// middleware. Routes behind RequireCapability always have it.
func currentUserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return "", false
	}
	id, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return "", false
	}
	return id, true
}
