package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trade-journal-go/internal/ledger"
)

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Total   *int64 `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, apiResponse{Success: true, Data: data})
}

func respondList(c *gin.Context, data any, count int, total int64) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data, Count: &count, Total: &total})
}

// respondError maps the ledger error taxonomy onto HTTP statuses.
// ErrNotOwned is reported with the same status and body as ErrNotFound so
// responses never reveal whether another user's record exists.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		c.JSON(http.StatusBadRequest, apiResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrNotOwned):
		c.JSON(http.StatusNotFound, apiResponse{Error: "resource not found"})
	case errors.Is(err, ledger.ErrReconciliation):
		c.JSON(http.StatusServiceUnavailable, apiResponse{Error: "operation did not commit, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, apiResponse{Error: "server error"})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apiResponse{Error: message})
}
