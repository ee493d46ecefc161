package response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Class   string `json:"class,omitempty"`
}
