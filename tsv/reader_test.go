package tsv

import (
	"strings"
	"testing"

	"stayscape/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLine() string {
	return strings.Join([]string{
		"Beautiful & luxurious studio at great location",
		"A new spacious villa with a beautiful garden",
		"2024-05-12T21:00:00.000Z",
		"Amsterdam",
		"preview.jpg",
		"1.jpg;2.jpg;3.jpg;4.jpg;5.jpg;6.jpg",
		"true",
		"false",
		"4.2",
		"apartment",
		"3",
		"4",
		"12000",
		"Breakfast;Air conditioning;Washer",
		"keks@htmlacademy.ru",
		"5",
		"52.37",
		"4.89",
	}, "\t")
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine(validLine())
	require.NoError(t, err)

	offer := rec.Offer
	assert.Equal(t, "Beautiful & luxurious studio at great location", offer.Title)
	assert.Equal(t, models.CityAmsterdam, offer.City)
	assert.Equal(t, models.HousingApartment, offer.Type)
	assert.True(t, offer.IsPremium)
	assert.Equal(t, 4.2, offer.Rating)
	assert.Equal(t, 3, offer.RoomsCnt)
	assert.Equal(t, 4, offer.PeopleCnt)
	assert.Equal(t, 12000, offer.Price)
	assert.Len(t, offer.Images, 6)
	assert.Equal(t, []models.Amenity{
		models.AmenityBreakfast,
		models.AmenityAirConditioning,
		models.AmenityWasher,
	}, offer.Amenities)
	assert.Equal(t, 5, offer.CommentsCnt)
	assert.Equal(t, 52.37, offer.Latitude)
	assert.Equal(t, 4.89, offer.Longitude)
	assert.Equal(t, "keks@htmlacademy.ru", rec.AuthorEmail)
	assert.Equal(t, 2024, offer.PostDate.Year())
}

func TestParseLineErrors(t *testing.T) {
	replaceField := func(index int, value string) string {
		fields := strings.Split(validLine(), "\t")
		fields[index] = value
		return strings.Join(fields, "\t")
	}

	tests := []struct {
		name string
		line string
	}{
		{"Too few fields", "only\tthree\tfields"},
		{"Bad date", replaceField(2, "yesterday")},
		{"Unknown city", replaceField(3, "Atlantis")},
		{"Unknown housing type", replaceField(9, "castle")},
		{"Unknown amenity", replaceField(13, "Jacuzzi")},
		{"Non-numeric rating", replaceField(8, "great")},
		{"Non-numeric price", replaceField(12, "cheap")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestParseReader(t *testing.T) {
	input := strings.Join([]string{
		validLine(),
		"",
		"broken\tline",
		validLine(),
	}, "\n")

	records, failures, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, records, 2)
	require.Len(t, failures, 1)
	// Blank lines are skipped without counting as failures,
	// but line numbers still track the original file.
	assert.Contains(t, failures, 3)
}

func TestParseDate(t *testing.T) {
	_, err := parseDate("2024-05-12")
	assert.NoError(t, err)

	_, err = parseDate("2024-05-12T21:00:00Z")
	assert.NoError(t, err)

	_, err = parseDate("12.05.2024")
	assert.Error(t, err)
}
