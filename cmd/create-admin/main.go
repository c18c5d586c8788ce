// Команда create-admin заводит первого сотрудника админки.
//
//	create-admin -d postgres://... -email admin@example.com -password Secret123 -name Admin -role SUPER_ADMIN
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agamariel/songorders/internal/logger"
	"github.com/agamariel/songorders/internal/migrations"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "create-admin:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		dbURI = flag.String("d", os.Getenv("DATABASE_URI"), "строка подключения к PostgreSQL")
		req   validation.CreateAdminRequest
		role  string
	)
	flag.StringVar(&req.Email, "email", "", "email сотрудника")
	flag.StringVar(&req.Password, "password", os.Getenv("ADMIN_PASSWORD"), "пароль (можно задать через ADMIN_PASSWORD)")
	flag.StringVar(&req.Name, "name", "", "имя сотрудника")
	flag.StringVar(&role, "role", string(models.AdminRoleSuperAdmin), "роль: ADMIN или SUPER_ADMIN")
	flag.Parse()
	req.Role = models.AdminRole(role)

	if *dbURI == "" {
		return errors.New("DATABASE_URI is required")
	}

	log, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqlDB, err := sql.Open("pgx", *dbURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()
	if err := migrations.Run(ctx, sqlDB, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, *dbURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	// Токены здесь не выдаются, секрет не нужен.
	svc := services.NewAdminService(storage.NewPostgresAdminStorage(pool), "", 0)
	admin, err := svc.CreateAdmin(ctx, &req)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		if errors.Is(err, storage.ErrAdminEmailExists) {
			return fmt.Errorf("admin %s already exists", req.Email)
		}
		return err
	}

	log.Info("admin user created",
		zap.String("id", admin.ID.String()),
		zap.String("email", admin.Email),
		zap.String("role", string(admin.Role)),
	)
	return nil
}
