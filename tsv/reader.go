// Package tsv parses tab-separated offer dumps for the import utility.
package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stayscape/models"
)

// fieldCount is the number of tab-separated columns in an offer row.
const fieldCount = 18

// Record is one parsed offer row. Authors are referenced by email and
// resolved (or created) at import time.
type Record struct {
	Offer       models.Offer
	AuthorEmail string
}

// ParseLine parses a single tab-separated offer row. Column order:
// title, description, postDate, city, previewImage, images, isPremium,
// isFavorite, rating, type, roomsCnt, peopleCnt, price, amenities,
// author, commentsCnt, latitude, longitude.
func ParseLine(line string) (*Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	postDate, err := parseDate(fields[2])
	if err != nil {
		return nil, fmt.Errorf("post date: %w", err)
	}

	city := models.City(fields[3])
	if !city.IsValid() {
		return nil, fmt.Errorf("unknown city %q", fields[3])
	}

	housingType := models.HousingType(fields[9])
	if !housingType.IsValid() {
		return nil, fmt.Errorf("unknown housing type %q", fields[9])
	}

	rating, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	roomsCnt, err := strconv.Atoi(fields[10])
	if err != nil {
		return nil, fmt.Errorf("rooms count: %w", err)
	}
	peopleCnt, err := strconv.Atoi(fields[11])
	if err != nil {
		return nil, fmt.Errorf("people count: %w", err)
	}
	price, err := strconv.Atoi(fields[12])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	commentsCnt, err := strconv.Atoi(fields[15])
	if err != nil {
		return nil, fmt.Errorf("comments count: %w", err)
	}
	latitude, err := strconv.ParseFloat(fields[16], 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	longitude, err := strconv.ParseFloat(fields[17], 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}

	amenities := make([]models.Amenity, 0)
	for _, a := range strings.Split(fields[13], ";") {
		amenity := models.Amenity(a)
		if !amenity.IsValid() {
			return nil, fmt.Errorf("unknown amenity %q", a)
		}
		amenities = append(amenities, amenity)
	}

	return &Record{
		Offer: models.Offer{
			Title:        fields[0],
			Description:  fields[1],
			PostDate:     postDate,
			City:         city,
			PreviewImage: fields[4],
			Images:       strings.Split(fields[5], ";"),
			IsPremium:    fields[6] == "true",
			Rating:       rating,
			Type:         housingType,
			RoomsCnt:     roomsCnt,
			PeopleCnt:    peopleCnt,
			Price:        price,
			Amenities:    amenities,
			CommentsCnt:  commentsCnt,
			Latitude:     latitude,
			Longitude:    longitude,
		},
		AuthorEmail: fields[14],
	}, nil
}

// ParseReader parses every non-blank row. Malformed rows are returned as
// errors keyed by their line number so callers can log and skip them.
func ParseReader(r io.Reader) ([]*Record, map[int]error, error) {
	var records []*Record
	failures := make(map[int]error)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			failures[lineNo] = err
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return records, failures, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
