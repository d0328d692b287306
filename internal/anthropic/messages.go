package anthropic

import (
	"fmt"
	"strings"
)

// MessagesRequest is the body of a Messages API call
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Message is one conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse is a decoded Messages API reply
type MessagesResponse struct {
	ID         string         `json:"id"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// ContentBlock is one block of the reply
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage reports token counts
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text joins every text block of the reply
func (r *MessagesResponse) Text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// APIError is an error body returned by the API
type APIError struct {
	Type       string      `json:"type"`
	Detail     ErrorDetail `json:"error"`
	StatusCode int         `json:"-"`
	RequestID  string      `json:"-"`
}

// ErrorDetail holds the API error type and message
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("anthropic API error (status %d, type %s): %s", e.StatusCode, e.Detail.Type, e.Detail.Message)
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}
