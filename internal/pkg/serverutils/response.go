package serverutils

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) *BaseResponse[T] {
	return &BaseResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Details []fieldDetail `json:"details,omitempty"`
	Stack   string        `json:"stack,omitempty"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
