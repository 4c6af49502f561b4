package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"task_manager/internal/config"
	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/service"
)

func main() {
	name := flag.String("name", "Tester", "display name")
	email := flag.String("email", "tester@example.com", "login email")
	password := flag.String("password", "password123", "login password")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	ctx := context.Background()

	stores, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", "error", err)
	}
	defer stores.Close()

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	auth := service.NewAuthService(stores.Users, service.NewPasswordHasher(cfg.BcryptCost), tokens, service.NewAuditService(stores.Audit))

	// try to sign up, fall back to logging in an existing user
	res, err := auth.Signup(ctx, service.SignupInput{Name: *name, Email: *email, Password: *password})
	switch {
	case err == nil:
		logger.Info("user created", "id", res.User.ID, "email", res.User.Email)
	case errors.Is(err, domain.ErrDuplicateEmail):
		res, err = auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
		if err != nil {
			logger.Fatal("user exists but login failed", "email", *email, "error", err)
		}
		logger.Info("user already exists", "id", res.User.ID, "email", res.User.Email)
	default:
		logger.Fatal("create user failed", "error", err)
	}

	fmt.Printf("user_id=%s\nexpires_at=%s\ntoken=%s\n", res.User.ID, res.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"), res.Token)
}
