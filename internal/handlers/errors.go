package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// respondError maps a service error onto a status code and a structured body.
// Server-side failures are logged with fallback as the public message.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, body := classifyError(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, body)
}

func classifyError(err error, fallback string) (int, errorResponse) {
	var (
		validationErr *apperrors.ValidationError
		transitionErr *apperrors.InvalidTransitionError
		creditErr     *apperrors.CreditLimitExceededError
		appErr        *apperrors.AppError
	)

	switch {
	case errors.As(err, &validationErr):
		body := errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"}
		if validationErr.Field != "" {
			body.Details = map[string]string{"field": validationErr.Field}
		}
		return http.StatusBadRequest, body
	case apperrors.IsValidation(err):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"}
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "NOT_FOUND"}
	case apperrors.IsForbidden(err):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Code: "FORBIDDEN"}
	case apperrors.IsDuplicate(err):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "DUPLICATE"}
	case errors.As(err, &transitionErr):
		details := map[string]string{
			"invoiceID": transitionErr.InvoiceID,
			"from":      transitionErr.From,
			"to":        transitionErr.To,
		}
		if transitionErr.Terminal {
			details["terminal"] = "true"
		}
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: "INVALID_TRANSITION", Details: details}
	case errors.As(err, &creditErr):
		return http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Code:  "CREDIT_LIMIT_EXCEEDED",
			Details: map[string]string{
				"organizationID": creditErr.OrganizationID,
				"available":      creditErr.Available.StringFixed(2),
				"requested":      creditErr.Requested.StringFixed(2),
				"shortfall":      creditErr.Shortfall().StringFixed(2),
			},
		}
	case apperrors.IsInsufficientCredit(err):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "CREDIT_LIMIT_EXCEEDED"}
	case errors.As(err, &appErr) && appErr.Code >= http.StatusBadRequest && appErr.Code < http.StatusInternalServerError:
		return appErr.Code, errorResponse{Error: appErr.Message, Code: "REQUEST_ERROR"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: fallback, Code: "INTERNAL_ERROR"}
	}
}

// respondBindError reports a request body or query that failed to bind.
func respondBindError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request format: " + err.Error(), Code: "VALIDATION_ERROR"})
}
