package entity

import "time"

type ChatRole string

const (
	RoleBuyer  ChatRole = "buyer"
	RoleSeller ChatRole = "seller"
	RoleNone   ChatRole = ""
)

// Chat is a conversation between exactly one buyer and one seller, optionally
// scoped to a part listing. Participant ids never change after creation.
type Chat struct {
	ID                string    `json:"id" firestore:"id"`
	BuyerID           string    `json:"buyer_id" firestore:"buyerId"`
	SellerID          string    `json:"seller_id" firestore:"sellerId"`
	Participants      []string  `json:"participants" firestore:"participants"`
	PartID            string    `json:"part_id,omitempty" firestore:"partId,omitempty"`
	BuyerUnreadCount  int       `json:"buyer_unread_count" firestore:"buyerUnreadCount"`
	SellerUnreadCount int       `json:"seller_unread_count" firestore:"sellerUnreadCount"`
	LastMessage       string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastSenderID      string    `json:"last_sender_id,omitempty" firestore:"lastSenderId,omitempty"`
	LastMessageAt     time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	CreatedAt         time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt         time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ChatDocID is the document id of the chat for (buyer, seller, part). Two
// creates for the same triple collide on it.
func ChatDocID(buyerID, sellerID, partID string) string {
	if partID == "" {
		return buyerID + "_" + sellerID
	}
	return buyerID + "_" + sellerID + "_" + partID
}

func (c *Chat) RoleOf(userID string) ChatRole {
	switch userID {
	case c.BuyerID:
		return RoleBuyer
	case c.SellerID:
		return RoleSeller
	}
	return RoleNone
}

func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && c.RoleOf(userID) != RoleNone
}

// Recipient returns the participant that is not senderID.
func (c *Chat) Recipient(senderID string) string {
	if senderID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}

// UnreadFor picks the counter matching the user's role: buyer_unread_count when
// the user is the buyer, seller_unread_count otherwise.
func (c *Chat) UnreadFor(userID string) int {
	n := c.SellerUnreadCount
	if userID == c.BuyerID {
		n = c.BuyerUnreadCount
	}
	if n < 0 {
		return 0
	}
	return n
}

// UnreadField is the Firestore field holding the counter for role.
func UnreadField(role ChatRole) string {
	if role == RoleBuyer {
		return "buyerUnreadCount"
	}
	return "sellerUnreadCount"
}
