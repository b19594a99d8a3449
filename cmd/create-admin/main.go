package main

import (
	"flag"
	"log"

	"go-social-shop/internal/model"
	"go-social-shop/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Creates or promotes a staff account from the command line. Useful when
// the seeded admin was removed or the password is lost.
func main() {
	username := flag.String("username", "admin", "staff account username")
	email := flag.String("email", "", "staff account email")
	password := flag.String("password", "", "staff account password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Promote existing account or create a new one
	var user model.User
	err := db.Where("email = ?", *email).First(&user).Error
	if err == nil {
		hashed, herr := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if herr != nil {
			log.Fatalf("failed to hash password: %v", herr)
		}
		updates := map[string]interface{}{
			"password": string(hashed),
			"is_staff": true,
			"is_active": true,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			log.Fatalf("failed to promote %s: %v", *email, err)
		}
		log.Printf("Promoted %s to staff and reset password", *email)
		return
	}

	admin := &model.User{
		Username:   *username,
		Email:      *email,
		Gender:     "O",
		AvatarPath: model.DefaultAvatarPath,
		IsStaff:    true,
		IsActive:   true,
	}
	if err := admin.SetPassword(*password); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("failed to create staff user: %v", err)
	}
	log.Printf("Staff user created: %s (%s)", *username, *email)
}
