package entity

import (
	"strings"
	"time"
)

type Profile struct {
	ID             string    `json:"id" firestore:"id"`
	FullName       string    `json:"full_name" firestore:"fullName"`
	Email          string    `json:"email,omitempty" firestore:"email"`
	Role           string    `json:"role" firestore:"role"`
	Location       string    `json:"location,omitempty" firestore:"location,omitempty"`
	PushTokens     []string  `json:"-" firestore:"pushTokens,omitempty"`
	WeeklyInsights bool      `json:"weekly_insights" firestore:"weeklyInsights"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Profile) DisplayName() string {
	if p == nil || strings.TrimSpace(p.FullName) == "" {
		return "Someone"
	}
	return strings.TrimSpace(p.FullName)
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}
