package models

import "time"

// Favorite links a user to an offer they marked as a favorite.
// The (UserID, OfferID) pair is unique. Rows are hard-deleted so that
// re-favoriting never collides with the unique index.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_offer" json:"user_id"`
	OfferID   uint      `gorm:"not null;uniqueIndex:idx_user_offer" json:"offer_id"`
	CreatedAt time.Time `json:"created_at"`
}
