package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createPaymentTablesMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_payment_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS payment_transactions (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					order_id UUID REFERENCES orders(id),
					transaction_id VARCHAR(100) UNIQUE,
					reference VARCHAR(100) NOT NULL UNIQUE,
					phone_number VARCHAR(20) NOT NULL,
					provider VARCHAR(20),
					amount BIGINT NOT NULL,
					currency VARCHAR(3) NOT NULL DEFAULT 'UGX',
					description VARCHAR(255),
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					provider_reference VARCHAR(100),
					callback_url VARCHAR(255),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_payment_transactions_order_id ON payment_transactions(order_id);
				CREATE INDEX idx_payment_transactions_status ON payment_transactions(status);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS payment_webhook_events (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					transaction_id VARCHAR(100),
					reference VARCHAR(100),
					status VARCHAR(20),
					raw_data JSONB
				);

				CREATE INDEX idx_payment_webhook_events_transaction_id ON payment_webhook_events(transaction_id);
				CREATE INDEX idx_payment_webhook_events_reference ON payment_webhook_events(reference);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS payment_webhook_events").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS payment_transactions").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createPaymentTablesMigration())
}
