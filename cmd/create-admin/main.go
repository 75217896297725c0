package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/database"
	"github.com/learnhub/proctor-backend/internal/logger"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/learnhub/proctor-backend/internal/repository"
	"github.com/learnhub/proctor-backend/internal/service"
	"golang.org/x/term"
)

// Bootstraps the first admin account. Admins create instructors and
// students through the API afterwards, so this is typically run once per
// deployment.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(repository.NewUserRepository(pool), cfg)

	in := bufio.NewReader(os.Stdin)
	fmt.Println("Create admin account")

	name := prompt(in, "Name: ")
	if name == "" {
		fail("name is required")
	}
	email := prompt(in, "Email: ")
	if email == "" {
		fail("email is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("could not read password")
	}
	password := string(raw)
	if len(password) < 6 {
		fail("password must be at least 6 characters")
	}

	user, err := authService.Register(ctx, name, email, password, model.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("Admin %s <%s> created (id %s)\n", user.Name, user.Email, user.ID)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}
