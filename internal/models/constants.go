// Package models contains the data types and defaults shared by chatpanel.
package models

// Default chat endpoint.
const DefaultEndpoint = "http://localhost:3000/api/chat"

// MinPromptLength is the shortest prompt, in characters, that may be submitted.
const MinPromptLength = 2

// Headers sent with every chat request.
const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderRequestID   = "X-Request-ID"
	HeaderUserAgent   = "User-Agent"

	ContentTypeJSON = "application/json"
)

// DefaultHeaders returns the headers for chat requests
func DefaultHeaders(userAgent string) map[string]string {
	return map[string]string{
		HeaderContentType: ContentTypeJSON,
		HeaderAccept:      ContentTypeJSON,
		HeaderUserAgent:   userAgent,
	}
}

// MaxErrorBody caps how much of a failed response body is kept for diagnostics.
const MaxErrorBody = 4096
