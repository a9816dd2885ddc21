package dto

import "time"

// APIResponse is the envelope for every JSON response
type APIResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data, Timestamp: time.Now()}
}

// NewMessageResponse returns a successful envelope carrying only a message
func NewMessageResponse(message string) APIResponse {
	return APIResponse{Success: true, Message: message, Timestamp: time.Now()}
}

// NewErrorAPIResponse wraps an error detail in a failed envelope
func NewErrorAPIResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{Success: false, Error: detail, Timestamp: time.Now()}
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}
