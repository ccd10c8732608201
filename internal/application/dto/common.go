package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"` // mensajes del libro remoto
}
