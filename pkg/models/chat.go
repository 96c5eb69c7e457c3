// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

// ChatRole is the author of a chat message
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// IsValid reports whether the role is one the training format and chat API accept.
func (r ChatRole) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is a role/content pair
type ChatMessage struct {
	Role    ChatRole `json:"role" yaml:"role"`
	Content string   `json:"content" yaml:"content"`
}

// ChatRequest is a single, non-streaming chat completion request
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature *float64
	MaxTokens   *int64
}

// TokenUsage reports the tokens billed for a completion
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens" yaml:"total_tokens"`
}

// ChatResponse is the generated assistant message
type ChatResponse struct {
	ID           string     `json:"id" yaml:"id"`
	Model        string     `json:"model" yaml:"model"`
	Content      string     `json:"content" yaml:"content"`
	FinishReason string     `json:"finish_reason" yaml:"finish_reason"`
	Usage        TokenUsage `json:"usage" yaml:"usage"`
}
