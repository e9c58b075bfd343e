package entity

import (
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotificationNewMessage    NotificationKind = "new_message"
	NotificationNewOffer      NotificationKind = "new_offer"
	NotificationOfferAccepted NotificationKind = "offer_accepted"
	NotificationNewRequest    NotificationKind = "new_request"
	NotificationWelcome       NotificationKind = "welcome"
)

type ChatRef struct {
	ChatID string `json:"chat_id" firestore:"chatId"`
}

type OfferRef struct {
	OfferID   string `json:"offer_id" firestore:"offerId"`
	RequestID string `json:"request_id" firestore:"requestId"`
}

type RequestRef struct {
	RequestID string `json:"request_id" firestore:"requestId"`
}

// Notification belongs to one recipient. Exactly one of Chat, Offer or Request
// is set, depending on Kind; welcome notifications carry none.
type Notification struct {
	ID        string           `json:"id" firestore:"id"`
	UserID    string           `json:"user_id" firestore:"userId"`
	Kind      NotificationKind `json:"kind" firestore:"kind"`
	Message   string           `json:"message" firestore:"message"`
	Read      bool             `json:"read" firestore:"read"`
	Chat      *ChatRef         `json:"chat,omitempty" firestore:"chat,omitempty"`
	Offer     *OfferRef        `json:"offer,omitempty" firestore:"offer,omitempty"`
	Request   *RequestRef      `json:"request,omitempty" firestore:"request,omitempty"`
	CreatedAt time.Time        `json:"created_at" firestore:"createdAt"`
}

func (n *Notification) Validate() error {
	if n.UserID == "" {
		return fmt.Errorf("notification has no recipient")
	}
	if n.Message == "" {
		return fmt.Errorf("notification has no message")
	}

	chat, offer, request := n.Chat != nil, n.Offer != nil, n.Request != nil
	switch n.Kind {
	case NotificationNewMessage:
		if !chat || offer || request || n.Chat.ChatID == "" {
			return fmt.Errorf("%s notification needs exactly a chat reference", n.Kind)
		}
	case NotificationNewOffer, NotificationOfferAccepted:
		if chat || !offer || request || n.Offer.OfferID == "" {
			return fmt.Errorf("%s notification needs exactly an offer reference", n.Kind)
		}
	case NotificationNewRequest:
		if chat || offer || !request || n.Request.RequestID == "" {
			return fmt.Errorf("%s notification needs exactly a request reference", n.Kind)
		}
	case NotificationWelcome:
		if chat || offer || request {
			return fmt.Errorf("welcome notification carries no reference")
		}
	default:
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	return nil
}

// AdminNotification is raised for staff, e.g. when the help bot escalates.
type AdminNotification struct {
	ID        string    `json:"id" firestore:"id"`
	Kind      string    `json:"kind" firestore:"kind"`
	Message   string    `json:"message" firestore:"message"`
	UserID    string    `json:"user_id,omitempty" firestore:"userId,omitempty"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
