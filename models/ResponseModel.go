package models

import (
	"net/http"
	"time"
)

// Error taxonomy codes returned to clients alongside the HTTP status.
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeValidation      = "validation"
	CodeUpstreamFailure = "upstream_failure"
	CodeInternal        = "internal"

	// CodeWithdrawalExceeded is the conflict variant for cancellations past the
	// statutory window.
	CodeWithdrawalExceeded = "withdrawal_period_exceeded"
)

// ServiceError carries an HTTP status, a taxonomy code and a short message from
// the service layer up to the handler.
type ServiceError struct {
	Status  int    `json:"-"`
	Code    string `json:"code" example:"conflict"`
	Message string `json:"message" example:"offer already declined"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a ServiceError with the given HTTP status and code.
func NewServiceError(status int, code, message string) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message}
}

func ErrUnauthorized(message string) *ServiceError {
	return NewServiceError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func ErrForbidden(message string) *ServiceError {
	return NewServiceError(http.StatusForbidden, CodeForbidden, message)
}

func ErrNotFound(message string) *ServiceError {
	return NewServiceError(http.StatusNotFound, CodeNotFound, message)
}

func ErrConflict(message string) *ServiceError {
	return NewServiceError(http.StatusConflict, CodeConflict, message)
}

func ErrValidation(message string) *ServiceError {
	return NewServiceError(http.StatusBadRequest, CodeValidation, message)
}

func ErrUpstream(message string) *ServiceError {
	return NewServiceError(http.StatusInternalServerError, CodeUpstreamFailure, message)
}

func ErrInternal(message string) *ServiceError {
	return NewServiceError(http.StatusInternalServerError, CodeInternal, message)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error" example:"offer already declined"`
	Code    string `json:"code,omitempty" example:"conflict"`
	Details string `json:"details,omitempty"`
}

// DecideApplicationRequest is the body for POST /api/applications/:id/decision.
type DecideApplicationRequest struct {
	Action    string `json:"action" binding:"required" example:"accept"`
	RequestID string `json:"request_id" binding:"required"`
}

// CreateOfferRequest is the multipart/JSON body for POST /api/offers.
type CreateOfferRequest struct {
	RequestID     string  `json:"request_id" form:"request_id" binding:"required"`
	Title         string  `json:"title" form:"title" binding:"required"`
	NetTotal      float64 `json:"net_total" form:"net_total"`
	TaxRate       float64 `json:"tax_rate" form:"tax_rate"`
	DiscountType  string  `json:"discount_type" form:"discount_type" example:"percent"`
	DiscountValue float64 `json:"discount_value" form:"discount_value"`
	DiscountLabel string  `json:"discount_label" form:"discount_label"`
}

// CreateOrderRequest is the multipart/JSON body for POST /api/orders.
type CreateOrderRequest struct {
	RequestID     string  `json:"request_id" form:"request_id" binding:"required"`
	OfferID       string  `json:"offer_id" form:"offer_id"`
	Title         string  `json:"title" form:"title" binding:"required"`
	NetTotal      float64 `json:"net_total" form:"net_total"`
	TaxRate       float64 `json:"tax_rate" form:"tax_rate"`
	DiscountType  string  `json:"discount_type" form:"discount_type"`
	DiscountValue float64 `json:"discount_value" form:"discount_value"`
	DiscountLabel string  `json:"discount_label" form:"discount_label"`
}

// CreateRequestRequest is the body for POST /api/requests.
type CreateRequestRequest struct {
	Branch        string  `json:"branch"`
	Category      string  `json:"category"`
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	BudgetMin     float64 `json:"budget_min"`
	BudgetMax     float64 `json:"budget_max"`
	ExecutionMode string  `json:"execution_mode"`
}

// PostMessageRequest is the body for POST /api/requests/:id/messages.
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// DocumentResponse is one entry of the document listing, including a signed
// download URL with a limited lifetime.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	SignedURL  string    `json:"signedUrl"`
	Category   string    `json:"category"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileResult reports the outcome of one uploaded file within an offer/order
// creation. Failed files carry the error; successful ones the stored path.
type FileResult struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
