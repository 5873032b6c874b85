package dto

// ErrorInfo carries a machine-readable error code and a human-readable
// message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the standard API response wrapper.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// OK wraps data in a successful response.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Fail builds an error response.
func Fail(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}
