package entity

import "time"

type PromotionOptions struct {
	Feature bool `json:"feature" firestore:"feature"`
	Boost   bool `json:"boost" firestore:"boost"`
	Combo   bool `json:"combo" firestore:"combo"`
}

type MonetizationPurchase struct {
	ID          string           `json:"id" firestore:"id"`
	UserID      string           `json:"user_id" firestore:"userId"`
	PartID      string           `json:"part_id" firestore:"partId"`
	Options     PromotionOptions `json:"options" firestore:"options"`
	AmountCents int64            `json:"amount_cents" firestore:"amountCents"`
	Status      string           `json:"status" firestore:"status"` // "paid", "failed"
	PaymentRef  string           `json:"payment_ref,omitempty" firestore:"paymentRef,omitempty"`
	CreatedAt   time.Time        `json:"created_at" firestore:"createdAt"`
}
