package api

type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

type ApiError struct {
	Error string `json:"message"`
}

// ValidationError is rendered with the individual field messages.
type ValidationError struct {
	StatusCode int
	Message    string
	Errors     []string
	ErrorLog   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ValidationErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}
