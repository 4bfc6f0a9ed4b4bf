// Package repository provides data access over the application's GORM models.
package repository

import (
	"context"
	"log/slog"
	"os"

	"stayscape/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// premiumPerCityLimit caps the premium-by-city listing.
const premiumPerCityLimit = 3

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// OfferRepository defines the interface for offer data operations
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Offer, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Offer, error)
	GetPremiumByCity(ctx context.Context, city models.City, viewerID uint) ([]*models.Offer, error)
	GetFavorites(ctx context.Context, userID uint) ([]*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, id uint, cascade bool) error
	IsOwner(ctx context.Context, offerID, userID uint) (bool, error)
	AddFavorite(ctx context.Context, offerID, userID uint) (*models.Offer, error)
	RemoveFavorite(ctx context.Context, offerID, userID uint) (*models.Offer, error)
	IsFavoritedBy(ctx context.Context, offerID, userID uint) (bool, error)
	RecomputeRating(ctx context.Context, offerID uint) error
}

// offerRepository implements OfferRepository
type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return models.NewInternalError(err)
	}
	logger.Info("offer created", "offer_id", offer.ID, "title", offer.Title)
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Preload("Author").First(&offer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Offer", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerState(ctx, []*models.Offer{&offer}, viewerID); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("post_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&offers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerState(ctx, offers, viewerID); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) GetPremiumByCity(ctx context.Context, city models.City, viewerID uint) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("city = ? AND is_premium = ?", city, true).
		Order("post_date DESC").
		Limit(premiumPerCityLimit).
		Find(&offers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachViewerState(ctx, offers, viewerID); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) GetFavorites(ctx context.Context, userID uint) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN favorites ON favorites.offer_id = offers.id").
		Where("favorites.user_id = ?", userID).
		Order("offers.post_date DESC").
		Find(&offers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	// Every row came from the viewer's own favorites.
	for _, offer := range offers {
		offer.IsFavorite = true
	}
	return offers, nil
}

func (r *offerRepository) Update(ctx context.Context, offer *models.Offer) error {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes an offer. When cascade is true the offer's comments are
// deleted in the same transaction; when false they are left behind as
// dangling references until their offer id stops resolving.
func (r *offerRepository) Delete(ctx context.Context, id uint, cascade bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			if err := tx.Where("offer_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		if err := tx.Where("offer_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Offer{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Offer", id)
		}
		return nil
	})
}

func (r *offerRepository) IsOwner(ctx context.Context, offerID, userID uint) (bool, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Select("author_id").First(&offer, offerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, models.NewNotFoundError("Offer", offerID)
		}
		return false, models.NewInternalError(err)
	}
	return offer.AuthorID == userID, nil
}

// AddFavorite inserts the (user, offer) pair into the favorites table.
// The insert is idempotent: favoriting an already-favorited offer is a
// no-op thanks to the unique index on the pair.
func (r *offerRepository) AddFavorite(ctx context.Context, offerID, userID uint) (*models.Offer, error) {
	fav := models.Favorite{UserID: userID, OfferID: offerID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "offer_id"}},
			DoNothing: true,
		}).
		Create(&fav).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, offerID, userID)
}

// RemoveFavorite deletes the (user, offer) pair. Removing a pair that was
// never favorited is a no-op, not an error.
func (r *offerRepository) RemoveFavorite(ctx context.Context, offerID, userID uint) (*models.Offer, error) {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND offer_id = ?", userID, offerID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, offerID, userID)
}

func (r *offerRepository) IsFavoritedBy(ctx context.Context, offerID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND offer_id = ?", userID, offerID).
		Count(&cnt).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return cnt > 0, nil
}

// ratingAggregate is the grouped result of the rating recomputation query.
type ratingAggregate struct {
	CommentCount int     `gorm:"column:comment_count"`
	AvgRating    float64 `gorm:"column:avg_rating"`
}

// RecomputeRating refreshes the offer's cached rating and comment count
// from its live comments. With zero comments both fields reset to 0.
// The read-then-write pair is not atomic as a whole; concurrent comment
// writes can transiently under-report, and the fields self-correct on
// the next recomputation.
func (r *offerRepository) RecomputeRating(ctx context.Context, offerID uint) error {
	var agg ratingAggregate
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("COUNT(*) AS comment_count, COALESCE(ROUND(AVG(rating), 1), 0) AS avg_rating").
		Where("offer_id = ?", offerID).
		Scan(&agg).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ?", offerID).
		Updates(map[string]any{
			"rating":       agg.AvgRating,
			"comments_cnt": agg.CommentCount,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		logger.Warn("rating recompute skipped, offer not found", "offer_id", offerID)
		return nil
	}
	logger.Info("offer rating updated",
		"offer_id", offerID, "rating", agg.AvgRating, "comments_cnt", agg.CommentCount)
	return nil
}

// attachViewerState fills the computed IsFavorite flag for the viewer.
// Anonymous viewers (viewerID == 0) always see false.
func (r *offerRepository) attachViewerState(ctx context.Context, offers []*models.Offer, viewerID uint) error {
	if viewerID == 0 || len(offers) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(offers))
	for _, offer := range offers {
		ids = append(ids, offer.ID)
	}
	var favorited []uint
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND offer_id IN ?", viewerID, ids).
		Pluck("offer_id", &favorited).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	set := make(map[uint]struct{}, len(favorited))
	for _, id := range favorited {
		set[id] = struct{}{}
	}
	for _, offer := range offers {
		_, offer.IsFavorite = set[offer.ID]
	}
	return nil
}
