package server

import (
	"time"

	"stayscape/cache"
	"stayscape/models"

	"github.com/gofiber/fiber/v2"
)

// offerInput carries the full payload for offer creation.
type offerInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	PostDate     *time.Time         `json:"post_date,omitempty"`
	City         models.City        `json:"city"`
	PreviewImage string             `json:"preview_image"`
	Images       []string           `json:"images"`
	IsPremium    bool               `json:"is_premium"`
	Type         models.HousingType `json:"type"`
	RoomsCnt     int                `json:"rooms_cnt"`
	PeopleCnt    int                `json:"people_cnt"`
	Price        int                `json:"price"`
	Amenities    []models.Amenity   `json:"amenities"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
}

func validateOfferInput(in *offerInput) *models.AppError {
	switch {
	case len(in.Title) < 10 || len(in.Title) > 100:
		return models.NewValidationError("Title must be between 10 and 100 characters")
	case len(in.Description) < 20 || len(in.Description) > 1024:
		return models.NewValidationError("Description must be between 20 and 1024 characters")
	case !in.City.IsValid():
		return models.NewValidationError("Unknown city")
	case in.PreviewImage == "":
		return models.NewValidationError("Preview image is required")
	case len(in.Images) != models.OfferImageCount:
		return models.NewValidationError("Exactly 6 images are required")
	case !in.Type.IsValid():
		return models.NewValidationError("Unknown housing type")
	case in.RoomsCnt < 1 || in.RoomsCnt > 8:
		return models.NewValidationError("Rooms count must be between 1 and 8")
	case in.PeopleCnt < 1 || in.PeopleCnt > 10:
		return models.NewValidationError("People count must be between 1 and 10")
	case in.Price < 100 || in.Price > 100000:
		return models.NewValidationError("Price must be between 100 and 100000")
	case len(in.Amenities) == 0:
		return models.NewValidationError("At least one amenity is required")
	case in.Latitude < -90 || in.Latitude > 90:
		return models.NewValidationError("Latitude must be between -90 and 90")
	case in.Longitude < -180 || in.Longitude > 180:
		return models.NewValidationError("Longitude must be between -180 and 180")
	}
	for _, a := range in.Amenities {
		if !a.IsValid() {
			return models.NewValidationError("Unknown amenity: " + string(a))
		}
	}
	return nil
}

// CreateOffer handles POST /api/offers
func (s *Server) CreateOffer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req offerInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if verr := validateOfferInput(&req); verr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, verr)
	}

	postDate := time.Now()
	if req.PostDate != nil {
		postDate = *req.PostDate
	}

	offer := &models.Offer{
		Title:        req.Title,
		Description:  req.Description,
		PostDate:     postDate,
		City:         req.City,
		PreviewImage: req.PreviewImage,
		Images:       req.Images,
		IsPremium:    req.IsPremium,
		Type:         req.Type,
		RoomsCnt:     req.RoomsCnt,
		PeopleCnt:    req.PeopleCnt,
		Price:        req.Price,
		Amenities:    req.Amenities,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		AuthorID:     userID,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidatePremiumOffers(ctx, string(offer.City))

	// Load author data for the response
	created, err := s.offerRepo.GetByID(ctx, offer.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetOffers handles GET /api/offers
func (s *Server) GetOffers(c *fiber.Ctx) error {
	ctx := c.Context()
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	viewerID, _ := s.optionalUserID(c)

	offers, err := s.offerRepo.List(ctx, limit, offset, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(offers)
}

// GetOffer handles GET /api/offers/:id
func (s *Server) GetOffer(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}
	viewerID, _ := s.optionalUserID(c)

	offer, err := s.offerRepo.GetByID(ctx, uint(id), viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	return c.JSON(offer)
}

// GetPremiumOffers handles GET /api/offers/premium/:city. Anonymous
// responses are served through the Redis cache; logged-in viewers bypass
// it because IsFavorite is viewer-specific.
func (s *Server) GetPremiumOffers(c *fiber.Ctx) error {
	ctx := c.Context()
	city := models.City(c.Params("city"))
	if !city.IsValid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown city"))
	}
	viewerID, _ := s.optionalUserID(c)

	if viewerID == 0 {
		var offers []*models.Offer
		err := cache.CacheAside(ctx, cache.PremiumOffersKey(string(city)), &offers, cache.PremiumOffersTTL, func() error {
			var ferr error
			offers, ferr = s.offerRepo.GetPremiumByCity(ctx, city, 0)
			return ferr
		})
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(offers)
	}

	offers, err := s.offerRepo.GetPremiumByCity(ctx, city, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(offers)
}

// GetFavoriteOffers handles GET /api/offers/favorites
func (s *Server) GetFavoriteOffers(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	offers, err := s.offerRepo.GetFavorites(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(offers)
}

// UpdateOffer handles PATCH /api/offers/:id (owner only)
func (s *Server) UpdateOffer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	var req struct {
		Title        *string             `json:"title"`
		Description  *string             `json:"description"`
		City         *models.City        `json:"city"`
		PreviewImage *string             `json:"preview_image"`
		Images       []string            `json:"images"`
		IsPremium    *bool               `json:"is_premium"`
		Type         *models.HousingType `json:"type"`
		RoomsCnt     *int                `json:"rooms_cnt"`
		PeopleCnt    *int                `json:"people_cnt"`
		Price        *int                `json:"price"`
		Amenities    []models.Amenity    `json:"amenities"`
		Latitude     *float64            `json:"latitude"`
		Longitude    *float64            `json:"longitude"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	offer, err := s.offerRepo.GetByID(ctx, uint(offerID), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if offer.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own offers"))
	}

	previousCity := offer.City

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.City != nil {
		offer.City = *req.City
	}
	if req.PreviewImage != nil {
		offer.PreviewImage = *req.PreviewImage
	}
	if req.Images != nil {
		offer.Images = req.Images
	}
	if req.IsPremium != nil {
		offer.IsPremium = *req.IsPremium
	}
	if req.Type != nil {
		offer.Type = *req.Type
	}
	if req.RoomsCnt != nil {
		offer.RoomsCnt = *req.RoomsCnt
	}
	if req.PeopleCnt != nil {
		offer.PeopleCnt = *req.PeopleCnt
	}
	if req.Price != nil {
		offer.Price = *req.Price
	}
	if req.Amenities != nil {
		offer.Amenities = req.Amenities
	}
	if req.Latitude != nil {
		offer.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		offer.Longitude = *req.Longitude
	}

	merged := offerInput{
		Title:        offer.Title,
		Description:  offer.Description,
		City:         offer.City,
		PreviewImage: offer.PreviewImage,
		Images:       offer.Images,
		Type:         offer.Type,
		RoomsCnt:     offer.RoomsCnt,
		PeopleCnt:    offer.PeopleCnt,
		Price:        offer.Price,
		Amenities:    offer.Amenities,
		Latitude:     offer.Latitude,
		Longitude:    offer.Longitude,
	}
	if verr := validateOfferInput(&merged); verr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, verr)
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidatePremiumOffers(ctx, string(previousCity))
	cache.InvalidatePremiumOffers(ctx, string(offer.City))

	return c.JSON(offer)
}

// DeleteOffer handles DELETE /api/offers/:id (owner only). Deletion always
// cascades to the offer's comments so the API never leaves orphans.
func (s *Server) DeleteOffer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	offer, err := s.offerRepo.GetByID(ctx, uint(offerID), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if offer.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own offers"))
	}

	if err := s.offerRepo.Delete(ctx, uint(offerID), true); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.InvalidatePremiumOffers(ctx, string(offer.City))

	return c.SendStatus(fiber.StatusNoContent)
}

// AddFavorite handles POST /api/offers/:id/favorite. Favoriting an offer
// twice has no additional effect.
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	if _, err := s.offerRepo.GetByID(ctx, uint(offerID), 0); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	offer, err := s.offerRepo.AddFavorite(ctx, uint(offerID), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(offer)
}

// RemoveFavorite handles DELETE /api/offers/:id/favorite. Removing an
// offer that was never favorited is a no-op.
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	if _, err := s.offerRepo.GetByID(ctx, uint(offerID), 0); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	offer, err := s.offerRepo.RemoveFavorite(ctx, uint(offerID), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(offer)
}
