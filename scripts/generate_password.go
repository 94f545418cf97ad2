package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
)

// Prints a bcrypt hash for seeding users by hand, using the BCRYPT_COST of
// the current environment.
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: go run scripts/generate_password.go <password>")
	}
	password := os.Args[1]

	cfg, err := config.Parse()
	if err != nil {
		logrus.WithError(err).Fatal("failed to read configuration")
	}

	passwords := auth.NewPasswordManager(cfg)
	hash, err := passwords.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Fatal("failed to hash password")
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		logrus.WithError(err).Fatal("hash verification failed")
	}

	fmt.Println(hash)
}
