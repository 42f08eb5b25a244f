package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/config"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// seedOptions are read from flags, then environment, then defaults.
type seedOptions struct {
	adminPassphrase   string
	kitchenPassphrase string
	mgPassphrase      string
	captainName       string
	captainUsername   string
	captainPassword   string
}

func main() {
	opts := parseOptions()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("unable to ping database", zap.Error(err))
	}

	// Passphrases and the first captain land together or not at all.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := database.New(tx)
	if err := seedPassphrases(ctx, q, opts, log); err != nil {
		log.Fatal("seed passphrases", zap.Error(err))
	}
	if err := seedCaptain(ctx, q, opts, log); err != nil {
		log.Fatal("seed captain", zap.Error(err))
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal("commit", zap.Error(err))
	}
	log.Info("seed completed")
}

func parseOptions() seedOptions {
	var o seedOptions
	flag.StringVar(&o.adminPassphrase, "admin-passphrase", "", "admin console passphrase")
	flag.StringVar(&o.kitchenPassphrase, "kitchen-passphrase", "", "kitchen display passphrase")
	flag.StringVar(&o.mgPassphrase, "mg-passphrase", "", "MG dashboard passphrase")
	flag.StringVar(&o.captainName, "captain-name", "", "first captain's display name")
	flag.StringVar(&o.captainUsername, "captain-username", "", "first captain's username")
	flag.StringVar(&o.captainPassword, "captain-password", "", "first captain's password")
	flag.Parse()

	fallback(&o.adminPassphrase, "SEED_ADMIN_PASSPHRASE", "admin1234")
	fallback(&o.kitchenPassphrase, "SEED_KITCHEN_PASSPHRASE", "kitchen1234")
	fallback(&o.mgPassphrase, "SEED_MG_PASSPHRASE", "mg123456")
	fallback(&o.captainName, "SEED_CAPTAIN_NAME", "Floor Captain")
	fallback(&o.captainUsername, "SEED_CAPTAIN_USERNAME", "captain")
	fallback(&o.captainPassword, "SEED_CAPTAIN_PASSWORD", "captain123")
	return o
}

func fallback(dst *string, env, def string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
		return
	}
	*dst = def
}

// seedPassphrases sets every console passphrase that is not configured yet.
func seedPassphrases(ctx context.Context, q *database.Queries, o seedOptions, log *zap.Logger) error {
	passphrases := map[string]string{
		enum.SettingAdminPassphrase:   o.adminPassphrase,
		enum.SettingKitchenPassphrase: o.kitchenPassphrase,
		enum.SettingMGPassphrase:      o.mgPassphrase,
	}
	for key, value := range passphrases {
		if existing, err := q.GetAppSetting(ctx, key); err == nil && existing.Value != "" {
			log.Info("passphrase already set, skipping", zap.String("key", key))
			continue
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("get %s: %w", key, err)
		}

		hash, err := auth.HashSecret(value)
		if err != nil {
			return fmt.Errorf("hash %s: %w", key, err)
		}
		if _, err := q.SetAppSetting(ctx, database.SetAppSettingParams{Key: key, Value: hash}); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		log.Info("passphrase set", zap.String("key", key))
	}
	return nil
}

// seedCaptain creates the first captain account if the username is free.
func seedCaptain(ctx context.Context, q *database.Queries, o seedOptions, log *zap.Logger) error {
	existing, err := q.GetStaffByUsername(ctx, o.captainUsername)
	if err == nil {
		log.Info("captain already exists, skipping", zap.String("username", existing.Username))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check captain: %w", err)
	}

	hash, err := auth.HashSecret(o.captainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	staff, err := q.CreateStaff(ctx, database.CreateStaffParams{
		Name:         o.captainName,
		Username:     o.captainUsername,
		PasswordHash: hash,
		Role:         enum.RoleCaptain,
	})
	if err != nil {
		return fmt.Errorf("insert captain: %w", err)
	}
	log.Info("created captain", zap.String("username", staff.Username), zap.String("id", staff.ID.String()))
	return nil
}
