package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createOrderTablesMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_order_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS orders (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID REFERENCES users(id),
					customer_name VARCHAR(255) NOT NULL,
					customer_email VARCHAR(255),
					customer_phone VARCHAR(20) NOT NULL,
					delivery_address TEXT,
					total BIGINT NOT NULL,
					currency VARCHAR(3) NOT NULL DEFAULT 'UGX',
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					payment_method VARCHAR(50),
					payment_reference VARCHAR(100),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_orders_user_id ON orders(user_id);
				CREATE INDEX idx_orders_status ON orders(status);
				CREATE INDEX idx_orders_payment_reference ON orders(payment_reference);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS order_items (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					order_id UUID NOT NULL REFERENCES orders(id),
					product_id UUID NOT NULL REFERENCES products(id),
					product_name VARCHAR(255) NOT NULL,
					unit_price BIGINT NOT NULL,
					quantity INTEGER NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_order_items_order_id ON order_items(order_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS order_items").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS orders").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createOrderTablesMigration())
}
