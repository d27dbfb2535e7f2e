package handler

// ErrorBody is returned for classified failures (not found, invalid input).
type ErrorBody struct {
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	HTTPStatus int    `json:"httpStatus"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// ErrorResponse is the generic body for everything else.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
