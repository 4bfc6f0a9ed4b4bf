package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer represents a rental listing.
//
// Rating and CommentsCnt are a cached projection over the offer's live
// comments; repository.OfferRepository.RecomputeRating keeps them in sync
// after every comment mutation.
type Offer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"not null" json:"description"`
	PostDate     time.Time      `gorm:"not null;index" json:"post_date"`
	City         City           `gorm:"not null;index" json:"city"`
	PreviewImage string         `gorm:"not null" json:"preview_image"`
	Images       []string       `gorm:"serializer:json" json:"images"`
	IsPremium    bool           `gorm:"not null;default:false" json:"is_premium"`
	Type         HousingType    `gorm:"not null" json:"type"`
	RoomsCnt     int            `gorm:"not null" json:"rooms_cnt"`
	PeopleCnt    int            `gorm:"not null" json:"people_cnt"`
	Price        int            `gorm:"not null" json:"price"`
	Amenities    []Amenity      `gorm:"serializer:json" json:"amenities"`
	Rating       float64        `gorm:"not null;default:0" json:"rating"`
	CommentsCnt  int            `gorm:"not null;default:0" json:"comments_cnt"`
	Latitude     float64        `gorm:"not null" json:"latitude"`
	Longitude    float64        `gorm:"not null" json:"longitude"`
	AuthorID     uint           `gorm:"not null" json:"author_id"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"author"`
	// IsFavorite is not persisted; it is a property of the (offer, viewer)
	// pair and is computed against the requesting user on every read.
	IsFavorite bool           `gorm:"-" json:"is_favorite"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
