// Command import loads a TSV offer dump into the database.
//
// Usage: import <file.tsv>
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"stayscape/config"
	"stayscape/database"
	"stayscape/models"
	"stayscape/repository"
	"stayscape/tsv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: import <file.tsv>")
	}
	filename := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using environment variables")
	}
	cfg := config.LoadConfig()
	db := database.Connect(cfg)

	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Can't import data from file %s: %v", filename, err)
	}
	defer file.Close()

	records, failures, err := tsv.ParseReader(file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", filename, err)
	}
	for line, ferr := range failures {
		log.Printf("Skipping line %d: %v", line, ferr)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	imported := 0
	for _, rec := range records {
		author, err := resolveAuthor(ctx, userRepo, rec.AuthorEmail)
		if err != nil {
			log.Printf("Skipping offer %q: %v", rec.Offer.Title, err)
			continue
		}

		offer := rec.Offer
		offer.AuthorID = author.ID
		if err := offerRepo.Create(ctx, &offer); err != nil {
			log.Printf("Skipping offer %q: %v", offer.Title, err)
			continue
		}
		imported++
	}

	log.Printf("Imported %d offers from %s (%d rows skipped)", imported, filename, len(failures))
}

// resolveAuthor finds the user with the given email, creating a stub
// account with a random password when none exists yet.
func resolveAuthor(ctx context.Context, users repository.UserRepository, email string) (*models.User, error) {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	if len(name) > 15 {
		name = name[:15]
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(randomPassword()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Type:     models.UserTypeRegular,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// randomPassword generates a throwaway credential for stub authors.
// Imported accounts are expected to reset it before first login.
func randomPassword() string {
	return uuid.New().String()[:12]
}
