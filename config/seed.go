package config

import (
	"context"
	"log"
	"os"
	"time"

	"cityfix-be/models"
	"cityfix-be/repository"
)

// SeedUsers ensures the built-in admin and resolver accounts exist. There is
// no self-registration; operators provision accounts through the environment.
func SeedUsers(ctx context.Context, users repository.UserStore) error {
	accounts := []struct {
		usernameEnv, passwordEnv, nameEnv string
		defaultName                       string
		role                              models.Role
	}{
		{"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_NAME", "管理员", models.RoleAdmin},
		{"RESOLVER_USERNAME", "RESOLVER_PASSWORD", "RESOLVER_NAME", "处理员", models.RoleResolver},
	}

	for _, acc := range accounts {
		username := os.Getenv(acc.usernameEnv)
		password := os.Getenv(acc.passwordEnv)
		if username == "" || password == "" {
			continue
		}

		if _, err := users.FindByUsername(ctx, username); err == nil {
			continue
		}

		name := os.Getenv(acc.nameEnv)
		if name == "" {
			name = acc.defaultName
		}

		user := &models.User{
			Username:  username,
			Name:      name,
			Role:      acc.role,
			Password:  password,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := user.HashPassword(); err != nil {
			return err
		}
		if err := users.Save(ctx, user); err != nil {
			return err
		}
		log.Printf("Seeded %s account %q", acc.role, username)
	}

	return nil
}
