package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"food-delivery/internal/auth"
	"food-delivery/internal/config"
	"food-delivery/internal/models"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run ./misc/dev-token <email> <customer|admin|rider>")
	}

	email, role := os.Args[1], models.Role(os.Args[2])
	if !role.Valid() {
		log.Fatalf("Unknown role %q", role)
	}

	// Reads JWT_SECRET from .env or the environment, like the server does.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := auth.SignToken(cfg.JWTSecret, email, role, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	// Pass it as "Authorization: Bearer <token>" or as the "token" cookie.
	fmt.Println(token)
}
