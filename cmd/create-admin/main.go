package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trefstays/stays-backend/internal/config"
	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/pkg/validator"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "", "admin display name")
	inactive := flag.Bool("inactive", false, "create the admin without activating it")
	flag.Parse()

	if err := validator.ValidateEmail(*email); err != nil {
		log.Fatalf("invalid -email: %v", err)
	}
	if err := validator.ValidatePassword(*password); err != nil {
		log.Fatalf("invalid -password: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.Security.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.AdminUser{
		Email:        validator.NormalizeEmail(*email),
		PasswordHash: string(hash),
		FullName:     *name,
		Role:         models.AdminRole,
		Activated:    !*inactive,
	}
	if err := database.NewAdminUserRepository(db).Upsert(ctx, admin); err != nil {
		log.Fatalf("failed to save admin: %v", err)
	}

	fmt.Printf("Admin %s saved (id %s, activated=%t)\n", admin.Email, admin.ID, admin.Activated)
}
