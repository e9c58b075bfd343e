package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatDocID(t *testing.T) {
	assert.Equal(t, "b1_s1", ChatDocID("b1", "s1", ""))
	assert.Equal(t, "b1_s1_p9", ChatDocID("b1", "s1", "p9"))
	assert.NotEqual(t, ChatDocID("b1", "s1", "p9"), ChatDocID("s1", "b1", "p9"))
}

func TestChatUnreadFor(t *testing.T) {
	c := &Chat{BuyerID: "b", SellerID: "s", BuyerUnreadCount: 3, SellerUnreadCount: -1}
	assert.Equal(t, 3, c.UnreadFor("b"))
	assert.Equal(t, 0, c.UnreadFor("s"))
	assert.Equal(t, RoleSeller, c.RoleOf("s"))
	assert.False(t, c.HasParticipant(""))
}
