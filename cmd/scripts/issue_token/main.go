// Command issue_token prints a bearer token for the lottery API, signed with
// the configured JWT secret and valid for jwt.expires_in seconds.
//
// Usage: issue_token <subject> [role]
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ArowuTest/forum-lottery-backend/internal/config"
	"github.com/ArowuTest/forum-lottery-backend/internal/utils"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: failed to read .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatal("Subject is required as a command line argument")
	}
	role := "organizer"
	if len(os.Args) > 2 {
		role = os.Args[2]
	}

	token, err := issueToken(cfg.JWT, os.Args[1], role)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func issueToken(cfg config.JWTConfig, subject, role string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is empty")
	}
	if cfg.Secret == "" {
		return "", errors.New("jwt.secret is not configured")
	}
	if cfg.ExpiresIn <= 0 {
		return "", errors.New("jwt.expires_in must be positive")
	}
	return utils.GenerateJWT(subject, role, cfg.Secret, cfg.TokenTTL())
}
