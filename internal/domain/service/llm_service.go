package service

import "context"

type ChatTurn struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

type CompletionService interface {
	Complete(ctx context.Context, turns []ChatTurn) (string, error)
}
