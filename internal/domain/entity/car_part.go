package entity

import "time"

type CarPart struct {
	ID            string     `json:"id" firestore:"id"`
	SellerID      string     `json:"seller_id" firestore:"sellerId"`
	Title         string     `json:"title" firestore:"title"`
	Make          string     `json:"make" firestore:"make"`
	Model         string     `json:"model" firestore:"model"`
	Year          int        `json:"year,omitempty" firestore:"year,omitempty"`
	PriceCents    int64      `json:"price_cents" firestore:"priceCents"`
	Status        string     `json:"status" firestore:"status"` // "active", "sold", "expired"
	ImageURLs     []string   `json:"image_urls,omitempty" firestore:"imageUrls,omitempty"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty" firestore:"featuredUntil,omitempty"`
	BoostedUntil  *time.Time `json:"boosted_until,omitempty" firestore:"boostedUntil,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at" firestore:"expiresAt"`
	CreatedAt     time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" firestore:"updatedAt"`
}

type PartRequest struct {
	ID        string    `json:"id" firestore:"id"`
	BuyerID   string    `json:"buyer_id" firestore:"buyerId"`
	Title     string    `json:"title" firestore:"title"`
	Make      string    `json:"make" firestore:"make"`
	Model     string    `json:"model" firestore:"model"`
	Year      int       `json:"year,omitempty" firestore:"year,omitempty"`
	Status    string    `json:"status" firestore:"status"` // "open", "fulfilled", "closed"
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

type Offer struct {
	ID         string    `json:"id" firestore:"id"`
	RequestID  string    `json:"request_id" firestore:"requestId"`
	SellerID   string    `json:"seller_id" firestore:"sellerId"`
	PartID     string    `json:"part_id,omitempty" firestore:"partId,omitempty"`
	PriceCents int64     `json:"price_cents" firestore:"priceCents"`
	Status     string    `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
