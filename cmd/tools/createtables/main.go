package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// One-shot DDL for environments where AutoMigrate is not allowed.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	stmts := []string{`
	CREATE TABLE IF NOT EXISTS users (
	  id CHAR(36) NOT NULL,
	  name VARCHAR(100) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  phone VARCHAR(20),
	  password_hash VARCHAR(255) NOT NULL,
	  role VARCHAR(32) NOT NULL DEFAULT 'user',
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
	CREATE TABLE IF NOT EXISTS houses (
	  id CHAR(36) NOT NULL,
	  title VARCHAR(200) NOT NULL,
	  description TEXT,
	  location VARCHAR(200) NOT NULL,
	  price_cents BIGINT NOT NULL,
	  photo_url VARCHAR(512),
	  photo_key VARCHAR(255),
	  status VARCHAR(20) NOT NULL DEFAULT 'vacant',
	  owner_id CHAR(36),
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_houses_status (status),
	  KEY ix_houses_owner_id (owner_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
	CREATE TABLE IF NOT EXISTS bookings (
	  id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  house_id CHAR(36) NOT NULL,
	  phone_number VARCHAR(20) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_bookings_user_id (user_id),
	  KEY ix_bookings_house_id (house_id),
	  CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	  CONSTRAINT fk_bookings_house FOREIGN KEY (house_id) REFERENCES houses(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
	CREATE TABLE IF NOT EXISTS payment_attempts (
	  id CHAR(36) NOT NULL,
	  booking_id CHAR(36) NOT NULL,
	  amount_cents BIGINT NOT NULL,
	  phone_number VARCHAR(20) NOT NULL,
	  checkout_request_id VARCHAR(128),
	  merchant_request_id VARCHAR(128),
	  status VARCHAR(32) NOT NULL,
	  mpesa_receipt VARCHAR(100),
	  transaction_date DATETIME(3),
	  failure_reason VARCHAR(255),
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_payment_attempts_booking_id (booking_id),
	  UNIQUE KEY ux_payment_attempts_checkout_request_id (checkout_request_id),
	  CONSTRAINT fk_payment_attempts_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
	CREATE TABLE IF NOT EXISTS callback_events (
	  id CHAR(36) NOT NULL,
	  checkout_request_id VARCHAR(128) NOT NULL,
	  result_code INT NOT NULL,
	  result_desc VARCHAR(255),
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3),
	  process_error VARCHAR(255),
	  PRIMARY KEY (id),
	  KEY ix_callback_events_checkout_request_id (checkout_request_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range stmts {
		if _, err := sqlDB.Exec(stmt); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	}

	log.Println("✓ tables created successfully")
}
