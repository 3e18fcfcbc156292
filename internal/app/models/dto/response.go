package dto

import "time"

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message" example:"success"`
}

// PaginationInfo represents skip/limit pagination metadata
type PaginationInfo struct {
	Skip       int   `json:"skip" example:"0"`
	Limit      int   `json:"limit" example:"100"`
	TotalItems int64 `json:"totalItems" example:"42"`
	HasMore    bool  `json:"hasMore" example:"false"`
}

// ListResponse is a page of items with its pagination metadata
type ListResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
