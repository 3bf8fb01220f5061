package main

import (
	"fmt"
	"log"

	"github.com/trefstays/stays-backend/internal/utils"
)

const jwtSecretBytes = 64

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for the stays backend")
	fmt.Println("===========================================")
	fmt.Println()

	jwtSecret, err := utils.GenerateSecret(jwtSecretBytes)
	if err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	storageSecret, err := utils.GenerateSecret(utils.SessionTokenBytes)
	if err != nil {
		log.Fatalf("Failed to generate storage secret: %v", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", jwtSecret)
	fmt.Printf("STORAGE_SECRET_KEY=%s\n", storageSecret)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
