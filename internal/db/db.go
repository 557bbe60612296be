package db

import (
	"database/sql"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

func InitDB(dbURL string) *sql.DB {
	db, err := sql.Open("mysql", dbURL)
	if err != nil {
		log.Fatal("could not open database:", err)
	}

	err = db.Ping()
	if err != nil {
		log.Fatal("database is not responding:", err)
	}

	log.Println("connected to database")
	return db
}

func RunMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			phone VARCHAR(50),
			university_name VARCHAR(255),
			is_verified BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id CHAR(36) PRIMARY KEY,
			currency VARCHAR(8) NOT NULL,
			fiat_balance DECIMAL(24,8) NOT NULL DEFAULT 0,
			sol_balance DECIMAL(24,8) NOT NULL DEFAULT 0,
			usdt_balance DECIMAL(24,8) NOT NULL DEFAULT 0,
			cost_balance DECIMAL(24,8) NOT NULL DEFAULT 0,
			loyalty_points INT NOT NULL DEFAULT 0,
			solana_wallet VARCHAR(64),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id CHAR(36) PRIMARY KEY,
			user_id CHAR(36) NOT NULL,
			amount DECIMAL(24,8) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			kind VARCHAR(20) NOT NULL,
			description VARCHAR(255),
			status VARCHAR(20) NOT NULL,
			discount_amount DECIMAL(24,8),
			original_amount DECIMAL(24,8),
			reference VARCHAR(40) NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_tx_user (user_id),
			INDEX idx_tx_created (created_at)
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id CHAR(36) PRIMARY KEY,
			seller_id CHAR(36) NOT NULL,
			seller_name VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(24,8) NOT NULL,
			category VARCHAR(50),
			subcategory VARCHAR(50),
			item_condition VARCHAR(20) DEFAULT 'new',
			location VARCHAR(255),
			quantity INT NOT NULL DEFAULT 1,
			is_available BOOLEAN DEFAULT TRUE,
			views INT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_products_seller (seller_id),
			INDEX idx_products_category (category)
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			buyer_id CHAR(36) NOT NULL,
			buyer_name VARCHAR(255) NOT NULL,
			seller_id CHAR(36) NOT NULL,
			seller_name VARCHAR(255) NOT NULL,
			product_id CHAR(36) NOT NULL,
			product_title VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(24,8) NOT NULL,
			total_amount DECIMAL(24,8) NOT NULL,
			discount_applied DECIMAL(24,8) NOT NULL DEFAULT 0,
			final_amount DECIMAL(24,8) NOT NULL,
			payment_currency VARCHAR(8) NOT NULL,
			delivery_address VARCHAR(255),
			notes TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_orders_buyer (buyer_id),
			INDEX idx_orders_seller (seller_id)
		);`,
		`CREATE TABLE IF NOT EXISTS services (
			id CHAR(36) PRIMARY KEY,
			provider_id CHAR(36) NOT NULL,
			provider_name VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(24,8) NOT NULL,
			service_type VARCHAR(50),
			duration VARCHAR(50),
			location VARCHAR(255),
			availability VARCHAR(255),
			rating DOUBLE NOT NULL DEFAULT 0,
			total_reviews INT NOT NULL DEFAULT 0,
			is_available BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_services_provider (provider_id)
		);`,
		`CREATE TABLE IF NOT EXISTS service_bookings (
			id CHAR(36) PRIMARY KEY,
			service_id CHAR(36) NOT NULL,
			service_title VARCHAR(255) NOT NULL,
			client_id CHAR(36) NOT NULL,
			client_name VARCHAR(255) NOT NULL,
			provider_id CHAR(36) NOT NULL,
			provider_name VARCHAR(255) NOT NULL,
			scheduled_date VARCHAR(20) NOT NULL,
			scheduled_time VARCHAR(20),
			notes TEXT,
			location VARCHAR(255),
			amount DECIMAL(24,8) NOT NULL,
			discount_applied DECIMAL(24,8) NOT NULL DEFAULT 0,
			final_amount DECIMAL(24,8) NOT NULL,
			payment_currency VARCHAR(8) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_bookings_client (client_id),
			INDEX idx_bookings_provider (provider_id)
		);`,
		`CREATE TABLE IF NOT EXISTS restaurants (
			id CHAR(36) PRIMARY KEY,
			owner_id CHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			cuisine_type VARCHAR(50),
			address VARCHAR(255),
			phone VARCHAR(50),
			opening_hours VARCHAR(100),
			rating DOUBLE NOT NULL DEFAULT 0,
			total_reviews INT NOT NULL DEFAULT 0,
			is_open BOOLEAN DEFAULT TRUE,
			is_verified BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_restaurants_owner (owner_id)
		);`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id CHAR(36) PRIMARY KEY,
			restaurant_id CHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(24,8) NOT NULL,
			category VARCHAR(50),
			is_available BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_menu_restaurant (restaurant_id)
		);`,
		`CREATE TABLE IF NOT EXISTS food_orders (
			id CHAR(36) PRIMARY KEY,
			customer_id CHAR(36) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			restaurant_id CHAR(36) NOT NULL,
			restaurant_name VARCHAR(255) NOT NULL,
			items JSON NOT NULL,
			subtotal DECIMAL(24,8) NOT NULL,
			delivery_fee DECIMAL(24,8) NOT NULL,
			total_amount DECIMAL(24,8) NOT NULL,
			discount_applied DECIMAL(24,8) NOT NULL DEFAULT 0,
			final_amount DECIMAL(24,8) NOT NULL,
			payment_currency VARCHAR(8) NOT NULL,
			delivery_address VARCHAR(255),
			notes TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_food_customer (customer_id),
			INDEX idx_food_restaurant (restaurant_id)
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id CHAR(36) PRIMARY KEY,
			user_id CHAR(36) NOT NULL,
			user_name VARCHAR(255) NOT NULL,
			target_id CHAR(36) NOT NULL,
			target_type VARCHAR(20) NOT NULL,
			rating INT NOT NULL,
			comment TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_reviews_target (target_id)
		);`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		if err != nil {
			log.Fatal("migration error:", err)
		}
	}
	log.Println("migrations complete")
}
