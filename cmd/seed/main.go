package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/salonbook-backend/internal/seed"
	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
	"github.com/angelmondragon/salonbook-backend/pkg/security"
)

const generatedPasswordLength = 20

func main() {
	file := flag.String("file", "seed.yaml", "YAML file with plans and tenants")
	hashPassword := flag.String("hash-password", "", "print the argon2id hash of this password and exit")
	generate := flag.Bool("generate-password", false, "generate a random password, print it with its hash and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	if *hashPassword != "" || *generate {
		// hashing only needs the argon2 parameters
		var passwordCfg config.PasswordConfig
		if err := config.LoadPassword(&passwordCfg); err != nil {
			logg.Error(context.Background(), "failed to load password config", err)
			os.Exit(1)
		}
		password := *hashPassword
		if *generate {
			generated, err := security.GenerateTempPassword(generatedPasswordLength)
			if err != nil {
				logg.Error(context.Background(), "failed to generate password", err)
				os.Exit(1)
			}
			password = generated
			fmt.Println("password:", password)
		}
		hash, err := security.HashPassword(password, passwordCfg)
		if err != nil {
			logg.Error(context.Background(), "failed to hash password", err)
			os.Exit(1)
		}
		fmt.Println("hash:", hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "file": *file})

	f, err := os.Open(*file)
	if err != nil {
		logg.Error(ctx, "failed to open seed file", err)
		os.Exit(1)
	}
	defer f.Close()

	doc, err := seed.Load(f)
	if err != nil {
		logg.Error(ctx, "failed to parse seed file", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	svc, err := tenants.NewService(tenants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create tenant service", err)
		os.Exit(1)
	}

	result, err := seed.Apply(ctx, svc, doc, logg)
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"plans_upserted":  result.PlansUpserted,
		"tenants_created": result.TenantsCreated,
		"tenants_skipped": result.TenantsSkipped,
	}), "seed complete")
}
