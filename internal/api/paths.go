// Package api provides the HTTP client for the chat endpoint.
package api

// GJSON paths for extracting the reply from a chat response.
//
// The endpoint is expected to answer with a bare message object. Two
// wrapped shapes are also accepted: an OpenAI-style completion and an
// Ollama-style chat response.
const (
	PathRole    = "role"
	PathContent = "content"

	// OpenAI chat completion: {"choices":[{"message":{...}}]}
	PathChoiceMessage = "choices.0.message"

	// Ollama chat: {"message":{...}}
	PathWrappedMessage = "message"

	// Error payloads commonly carry one of these
	PathErrorMessage = "error.message"
	PathErrorText    = "error"
)
