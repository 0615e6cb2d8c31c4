package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/model"
	"github.com/carhive/carhive/internal/repository"
)

type output struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	CarIDs   []string `json:"car_ids"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "demo@carhive.local", "Demo account email")
		name        = flag.String("name", "Demo User", "Demo account name")
		password    = flag.String("password", "demo-password", "Demo account password")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *name, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	carIDs, err := seedCars(ctx, repo, user.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed cars:", err)
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Email:    user.Email,
		Password: *password,
		CarIDs:   carIDs,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s / %s (%d cars)\n", out.Email, out.Password, len(out.CarIDs))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := repo.GetUserByEmail(ctx, email); err == nil {
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func seedCars(ctx context.Context, repo *repository.Repository, ownerID string) ([]string, error) {
	demos := []*model.Car{
		{
			Title:       "2019 Honda Civic",
			Description: "Well maintained sedan, single owner, full service history.",
			Tags:        model.Tags{CarType: "sedan", Company: "Honda", Dealer: "City Motors"},
		},
		{
			Title:       "2021 Toyota RAV4 Hybrid",
			Description: "Compact SUV with hybrid drivetrain, low mileage.",
			Tags:        model.Tags{CarType: "suv", Company: "Toyota", Dealer: "Lakeside Toyota"},
		},
		{
			Title:       "2017 Ford Mustang GT",
			Description: "5.0 V8 coupe, manual transmission, garage kept.",
			Tags:        model.Tags{CarType: "coupe", Company: "Ford", Dealer: "Premium Autos"},
		},
	}

	ids := make([]string, 0, len(demos))
	now := time.Now().UTC()
	for _, car := range demos {
		car.ID = ulid.Make().String()
		car.OwnerID = ownerID
		car.Images = []string{}
		car.CreatedAt = now
		car.UpdatedAt = now
		if err := repo.CreateCar(ctx, car); err != nil {
			return nil, err
		}
		ids = append(ids, car.ID)
		now = now.Add(time.Millisecond)
	}
	return ids, nil
}
