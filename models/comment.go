package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a rated text review attached to one offer.
// Comments are immutable once created; the only mutations are create
// and delete.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Text      string         `gorm:"not null" json:"text"`
	Rating    int            `gorm:"not null" json:"rating"`
	OfferID   uint           `gorm:"not null;index" json:"offer_id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
