package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"bloodlink/config"
	"bloodlink/database"
	"bloodlink/models"
	"bloodlink/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeds a local database with blood banks and donors, then prints a bearer
// token per account so the API can be exercised by hand.
func main() {
	config.LoadConfig()
	database.InitDB()
	defer database.CloseDB(context.Background())

	usersColl := database.DB().Collection("users")
	apptColl := database.DB().Collection("appointments")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := usersColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear users collection: %v", err)
	}
	if _, err := apptColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear appointments collection: %v", err)
	}

	weekday := &models.DayHours{Open: "09:00", Close: "17:00"}
	saturday := &models.DayHours{Open: "10:00", Close: "14:00"}
	cities := []string{"Nairobi", "Mombasa", "Kisumu"}
	bloodTypes := []string{"O+", "O-", "A+", "A-", "B+", "B-", "AB+", "AB-"}

	now := time.Now()
	var users []interface{}
	var seeded []models.User

	for i, city := range cities {
		bank := models.User{
			ID:       uuid.NewString(),
			Role:     models.RoleBloodBank,
			IsActive: true,
			Email:    fmt.Sprintf("bank_%d@example.com", i+1),
			Phone:    fmt.Sprintf("0700000%03d", i+1),
			OrganizationInfo: &models.OrganizationInfo{
				Name: fmt.Sprintf("%s Regional Blood Centre", city),
				OperatingHours: models.WeeklyHours{
					Monday: weekday, Tuesday: weekday, Wednesday: weekday,
					Thursday: weekday, Friday: weekday, Saturday: saturday,
				},
			},
			Location: &models.Location{
				LocationName: "Main donation hall",
				Street:       "1 Hospital Road",
				City:         city,
				Country:      "Kenya",
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		users = append(users, bank)
		seeded = append(seeded, bank)
	}

	for i := 1; i <= 10; i++ {
		history := &models.MedicalHistory{EligibleToDonate: true}
		// Every third donor gave blood recently and is still inside the waiting window.
		if i%3 == 0 {
			last := now.AddDate(0, -1, -rand.Intn(20))
			history.LastDonationDate = &last
		} else if i%2 == 0 {
			last := now.AddDate(0, -6, 0)
			history.LastDonationDate = &last
		}
		donor := models.User{
			ID:             uuid.NewString(),
			Role:           models.RoleDonor,
			IsActive:       true,
			FirstName:      "Donor",
			LastName:       fmt.Sprintf("%02d", i),
			Email:          fmt.Sprintf("donor_%d@example.com", i),
			BloodType:      bloodTypes[rand.Intn(len(bloodTypes))],
			MedicalHistory: history,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		users = append(users, donor)
		seeded = append(seeded, donor)
	}

	admin := models.User{
		ID:        uuid.NewString(),
		Role:      models.RoleAdmin,
		IsActive:  true,
		Email:     "admin@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	users = append(users, admin)
	seeded = append(seeded, admin)

	insertResult, err := usersColl.InsertMany(ctx, users)
	if err != nil {
		log.Fatalf("Failed to insert users: %v", err)
	}
	fmt.Printf("Inserted %d users\n", len(insertResult.InsertedIDs))

	secret := []byte(config.AppConfig.JWTSecret)
	if len(secret) == 0 {
		fmt.Println("JWT_SECRET not set, skipping tokens")
		return
	}
	for _, u := range seeded {
		token, err := utils.GenerateToken(secret, u.ID, string(u.Role), 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", u.Email, err)
		}
		fmt.Printf("%-10s %-28s %s\n", u.Role, u.Email, token)
	}
}
