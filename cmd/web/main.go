package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/config"
	apphttp "github.com/CelionLigalamu/Nyumba-Hunt/internal/http"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/bookings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/listings"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/payments"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/users"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&listings.House{},
		&bookings.Booking{},
		&payments.PaymentAttempt{},
		&payments.CallbackEvent{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gateway := mpesa.NewClient(mpesa.Config{
		ConsumerKey:    cfg.MpesaConsumerKey,
		ConsumerSecret: cfg.MpesaConsumerSecret,
		ShortCode:      cfg.MpesaShortCode,
		Passkey:        cfg.MpesaPasskey,
		Environment:    cfg.MpesaEnvironment,
		CallbackURL:    cfg.MpesaCallbackURL,
	})

	photos, err := storage.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("photo storage ready", "driver", photos.Driver)

	r := apphttp.NewRouter(logger, db, cfg, gateway, photos.Storage)
	if err := r.Run(":" + cfg.GinPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
