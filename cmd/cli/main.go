package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fekuna/storefront-service/config"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	userDTO "github.com/fekuna/storefront-service/internal/user/dto"
	userRepoPkg "github.com/fekuna/storefront-service/internal/user/repository"
	userUCPkg "github.com/fekuna/storefront-service/internal/user/usecase"
	"github.com/fekuna/storefront-service/pkg/database/postgres"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

const usage = "expected 'add-admin' or 'seed' subcommand"

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	name := addAdminCmd.String("name", "Administrator", "Display name for the admin")
	email := addAdminCmd.String("email", "", "Email for the new admin")
	password := addAdminCmd.String("password", "", "Password for the new admin")
	super := addAdminCmd.Bool("super", false, "Create a super-admin instead of an admin")

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		role := model.RoleAdmin
		if *super {
			role = model.RoleSuperAdmin
		}
		addAdmin(cfg, *name, *email, *password, role)
	case "seed":
		seedCmd.Parse(os.Args[2:])
		seed(cfg)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openDB(cfg *config.Config) *sqlx.DB {
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure the schema exists if the CLI runs before the server
	if err := postgres.Migrate(context.Background(), db, cfg.Server.MigrationsDir, logger.NewNop()); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	return db
}

func addAdmin(cfg *config.Config, name, email, password, role string) {
	db := openDB(cfg)
	defer db.Close()

	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	uc := userUCPkg.NewUserUseCase(userRepoPkg.NewPGRepository(db), tokens, logger.NewNop())

	u, err := uc.CreateUser(context.Background(), &userDTO.RegisterInput{Name: name, Email: email, Password: password}, role)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("%s '%s' created successfully (id %s).\n", role, u.Email, u.ID)
}
