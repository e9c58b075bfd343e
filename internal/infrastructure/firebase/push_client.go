package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"partmatch/internal/domain/service"
	"partmatch/pkg/logger"
)

// FCM caps a multicast at 500 tokens.
const maxMulticastTokens = 500

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushClient sends device notifications through Firebase Cloud Messaging.
type PushClient struct {
	sender multicastSender
}

func NewPushClient(client *messaging.Client) *PushClient {
	return &PushClient{sender: client}
}

func (p *PushClient) Send(ctx context.Context, msg service.PushMessage) (int, error) {
	if len(msg.Tokens) == 0 {
		return 0, nil
	}

	accepted := 0
	for start := 0; start < len(msg.Tokens); start += maxMulticastTokens {
		end := start + maxMulticastTokens
		if end > len(msg.Tokens) {
			end = len(msg.Tokens)
		}

		resp, err := p.sender.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: msg.Tokens[start:end],
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			return accepted, fmt.Errorf("fcm multicast: %w", err)
		}
		accepted += resp.SuccessCount
		if resp.FailureCount > 0 {
			logger.Warn("FCM: %d of %d tokens rejected", resp.FailureCount, end-start)
		}
	}
	return accepted, nil
}

// NoopPushClient is used when push is not configured.
type NoopPushClient struct{}

func (NoopPushClient) Send(ctx context.Context, msg service.PushMessage) (int, error) {
	return 0, nil
}
