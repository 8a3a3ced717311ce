package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	"github.com/coffeetab/coffeetab/internal/infrastructure/adapter/api/dto"
)

// centsString renders cents as the decimal string used on the wire
func centsString(cents int64) string {
	return entity.CentsToString(cents)
}

// parseLedgerID extracts and validates the ledger ID path parameter. On
// failure it writes the error response and returns false.
func parseLedgerID(c *gin.Context) (uint64, bool) {
	idParam := c.Param("ledgerId")
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(errs.ErrInvalidLedgerID),
			Message: "Invalid ledger ID format",
		})
		return 0, false
	}
	return id, true
}

// httpStatus maps a domain error to an HTTP status code
func httpStatus(err error) int {
	switch {
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrLedgerLocked):
		return http.StatusLocked
	case errs.IsConflictError(err):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNothingToSettle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standardized error body for a domain error
func respondError(c *gin.Context, err error) {
	status := httpStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Never leak internals to the kiosk
		message = "Internal server error"
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    errs.ErrorCode(err),
		Message: message,
	})
}

// bindJSON binds the request body, writing the error response on failure
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.ErrorCode(errs.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return false
	}
	return true
}
