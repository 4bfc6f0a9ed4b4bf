package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"stayscape/config"
	"stayscape/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer wires a server around an in-memory SQLite database.
// Redis is nil, so cache helpers and rate limits no-op.
func setupTestServer(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Offer{}, &models.Comment{}, &models.Favorite{},
	))

	cfg := &config.Config{JWTSecret: "test-secret-key", UploadDir: t.TempDir()}
	srv := NewServerWithDB(cfg, db, nil)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// signupUser registers a user through the API and returns its token and id.
func signupUser(t *testing.T, app *fiber.App, email string) (string, uint) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"name":     "keks",
		"email":    email,
		"password": "secret123",
	})
	req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var signupResp authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signupResp))
	return signupResp.Token, signupResp.User.ID
}

func validOfferPayload() map[string]any {
	return map[string]any{
		"title":         "Cozy canal-side apartment",
		"description":   "A quiet two-room apartment right on the canal",
		"city":          "Amsterdam",
		"preview_image": "preview.jpg",
		"images":        []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"},
		"is_premium":    false,
		"type":          "apartment",
		"rooms_cnt":     2,
		"people_cnt":    3,
		"price":         12000,
		"amenities":     []string{"Breakfast", "Washer"},
		"latitude":      52.37,
		"longitude":     4.89,
	}
}

// createOffer posts a valid offer as the given user and returns its id.
func createOffer(t *testing.T, app *fiber.App, token string, mutate ...func(map[string]any)) uint {
	t.Helper()

	payload := validOfferPayload()
	for _, m := range mutate {
		m(payload)
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/offers/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var offer models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&offer))
	return offer.ID
}

func TestSignup(t *testing.T) {
	app := setupTestServer(t)

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
	}{
		{
			name: "Valid signup",
			requestBody: map[string]string{
				"name":     "keks",
				"email":    "keks@example.com",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name: "Missing email",
			requestBody: map[string]string{
				"name":     "keks",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Password too short",
			requestBody: map[string]string{
				"name":     "keks",
				"email":    "short@example.com",
				"password": "abc",
			},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Name too long",
			requestBody: map[string]string{
				"name":     "a-very-long-name-over-limit",
				"email":    "long@example.com",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Duplicate email",
			requestBody: map[string]string{
				"name":     "keks",
				"email":    "keks@example.com",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusCreated {
				var response map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
				assert.NotEmpty(t, response["token"])
				user := response["user"].(map[string]any)
				// Password hash must never leak.
				assert.NotContains(t, user, "password")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	app := setupTestServer(t)
	signupUser(t, app, "login@example.com")

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
	}{
		{
			name: "Valid login",
			requestBody: map[string]string{
				"email":    "login@example.com",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Wrong password",
			requestBody: map[string]string{
				"email":    "login@example.com",
				"password": "wrongpass",
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name: "Unknown email",
			requestBody: map[string]string{
				"email":    "nobody@example.com",
				"password": "secret123",
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreateOfferValidation(t *testing.T) {
	app := setupTestServer(t)
	token, _ := signupUser(t, app, "host@example.com")

	tests := []struct {
		name           string
		mutate         func(map[string]any)
		useAuth        bool
		expectedStatus int
	}{
		{
			name:           "Valid offer",
			mutate:         func(map[string]any) {},
			useAuth:        true,
			expectedStatus: fiber.StatusCreated,
		},
		{
			name: "Title too short",
			mutate: func(p map[string]any) {
				p["title"] = "Short"
			},
			useAuth:        true,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Unknown city",
			mutate: func(p map[string]any) {
				p["city"] = "Atlantis"
			},
			useAuth:        true,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Wrong image count",
			mutate: func(p map[string]any) {
				p["images"] = []string{"1.jpg", "2.jpg"}
			},
			useAuth:        true,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Price out of range",
			mutate: func(p map[string]any) {
				p["price"] = 50
			},
			useAuth:        true,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name: "Unknown amenity",
			mutate: func(p map[string]any) {
				p["amenities"] = []string{"Jacuzzi"}
			},
			useAuth:        true,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Unauthenticated",
			mutate:         func(map[string]any) {},
			useAuth:        false,
			expectedStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validOfferPayload()
			tt.mutate(payload)
			body, _ := json.Marshal(payload)
			req := httptest.NewRequest("POST", "/api/offers/", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.useAuth {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusCreated {
				var offer models.Offer
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&offer))
				assert.Equal(t, 0.0, offer.Rating)
				assert.Equal(t, 0, offer.CommentsCnt)
				assert.False(t, offer.IsFavorite)
			}
		})
	}
}

func TestOfferOwnership(t *testing.T) {
	app := setupTestServer(t)
	ownerToken, _ := signupUser(t, app, "owner@example.com")
	otherToken, _ := signupUser(t, app, "other@example.com")

	offerID := createOffer(t, app, ownerToken)

	// A non-owner cannot update.
	body, _ := json.Marshal(map[string]any{"price": 500})
	req := httptest.NewRequest("PATCH", fmt.Sprintf("/api/offers/%d", offerID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+otherToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// A non-owner cannot delete.
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/offers/%d", offerID), nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The owner can update.
	req = httptest.NewRequest("PATCH", fmt.Sprintf("/api/offers/%d", offerID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, 500, updated.Price)

	// The owner can delete.
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/offers/%d", offerID), nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestFavoriteEndpoints(t *testing.T) {
	app := setupTestServer(t)
	hostToken, _ := signupUser(t, app, "host@example.com")
	guestToken, _ := signupUser(t, app, "guest@example.com")

	offerID := createOffer(t, app, hostToken)

	favorite := func(method, token string) *models.Offer {
		req := httptest.NewRequest(method, fmt.Sprintf("/api/offers/%d/favorite", offerID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var offer models.Offer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&offer))
		return &offer
	}

	// Add, then add again: idempotent.
	assert.True(t, favorite("POST", guestToken).IsFavorite)
	assert.True(t, favorite("POST", guestToken).IsFavorite)

	// Favorites listing contains the offer exactly once.
	req := httptest.NewRequest("GET", "/api/offers/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+guestToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var favorites []models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&favorites))
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].IsFavorite)

	// The host never favorited it.
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/offers/%d", offerID), nil)
	req.Header.Set("Authorization", "Bearer "+hostToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var asHost models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asHost))
	assert.False(t, asHost.IsFavorite)

	// Anonymous viewers always see false.
	req = httptest.NewRequest("GET", fmt.Sprintf("/api/offers/%d", offerID), nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	var asAnon models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asAnon))
	assert.False(t, asAnon.IsFavorite)

	// Remove, then remove again: no-op.
	assert.False(t, favorite("DELETE", guestToken).IsFavorite)
	assert.False(t, favorite("DELETE", guestToken).IsFavorite)
}

func TestCommentFlow(t *testing.T) {
	app := setupTestServer(t)
	hostToken, _ := signupUser(t, app, "host@example.com")
	guestToken, _ := signupUser(t, app, "guest@example.com")

	offerID := createOffer(t, app, hostToken)

	postComment := func(token string, text string, rating int) (*models.Comment, int) {
		body, _ := json.Marshal(map[string]any{"text": text, "rating": rating})
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/offers/%d/comments", offerID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		if resp.StatusCode != fiber.StatusCreated {
			return nil, resp.StatusCode
		}
		var comment models.Comment
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&comment))
		return &comment, resp.StatusCode
	}

	getOffer := func() *models.Offer {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/offers/%d", offerID), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var offer models.Offer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&offer))
		return &offer
	}

	// Validation failures.
	_, status := postComment(guestToken, "hi", 4)
	assert.Equal(t, fiber.StatusBadRequest, status)
	_, status = postComment(guestToken, "Great place to stay", 6)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// Two comments: ratings [3, 5] -> mean 4.0.
	_, status = postComment(guestToken, "Decent but noisy at night", 3)
	require.Equal(t, fiber.StatusCreated, status)
	fiveStar, status := postComment(guestToken, "Absolutely loved this place", 5)
	require.Equal(t, fiber.StatusCreated, status)

	offer := getOffer()
	assert.Equal(t, 4.0, offer.Rating)
	assert.Equal(t, 2, offer.CommentsCnt)

	// Comment listing is newest-first.
	req := httptest.NewRequest("GET", fmt.Sprintf("/api/offers/%d/comments", offerID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var comments []models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
	require.Len(t, comments, 2)

	// Only the author may delete a comment.
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/offers/%d/comments/%d", offerID, fiveStar.ID), nil)
	req.Header.Set("Authorization", "Bearer "+hostToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Author deletion triggers recomputation: [3] -> 3.0.
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/offers/%d/comments/%d", offerID, fiveStar.ID), nil)
	req.Header.Set("Authorization", "Bearer "+guestToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	offer = getOffer()
	assert.Equal(t, 3.0, offer.Rating)
	assert.Equal(t, 1, offer.CommentsCnt)
}

func TestPremiumOffers(t *testing.T) {
	app := setupTestServer(t)
	token, _ := signupUser(t, app, "host@example.com")

	for i := 0; i < 4; i++ {
		createOffer(t, app, token, func(p map[string]any) {
			p["city"] = "Paris"
			p["is_premium"] = true
		})
	}
	createOffer(t, app, token, func(p map[string]any) {
		p["city"] = "Paris"
		p["is_premium"] = false
	})

	req := httptest.NewRequest("GET", "/api/offers/premium/Paris", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var offers []models.Offer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&offers))
	assert.Len(t, offers, 3)
	for _, o := range offers {
		assert.True(t, o.IsPremium)
	}

	req = httptest.NewRequest("GET", "/api/offers/premium/Atlantis", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetMyProfile(t *testing.T) {
	app := setupTestServer(t)
	token, userID := signupUser(t, app, "me@example.com")

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "me@example.com", user.Email)

	// No token: unauthorized.
	req = httptest.NewRequest("GET", "/api/users/me", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUploadAvatar(t *testing.T) {
	app := setupTestServer(t)
	token, _ := signupUser(t, app, "avatar@example.com")

	upload := func(filename string) int {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("avatar", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/api/users/me/avatar", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusBadRequest, upload("notes.txt"))
	assert.Equal(t, fiber.StatusOK, upload("me.png"))

	// The stored path ends up on the profile.
	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.NotEmpty(t, user.Avatar)
}
