package service

import (
	"context"

	"partmatch/internal/domain/entity"
)

// PushMessage is a device push addressed to a set of registration tokens.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type PushService interface {
	// Send returns the number of tokens the provider accepted.
	Send(ctx context.Context, msg PushMessage) (int, error)
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type MailService interface {
	Send(ctx context.Context, email Email) error
}

// EventPublisher fans a change event out to every instance's realtime channel.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.ChangeEvent) error
}
