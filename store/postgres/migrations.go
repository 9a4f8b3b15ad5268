package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the billing store (PostgreSQL).
var Migrations = migrate.NewGroup("billing")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_billing_customers",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_customers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_billing_customers_email ON billing_customers (email);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_customers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_products",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_products (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL DEFAULT '',
    price_amount   BIGINT NOT NULL DEFAULT 0,
    price_currency TEXT NOT NULL DEFAULT '',
    rate_amount    BIGINT NOT NULL DEFAULT 0,
    rate_currency  TEXT NOT NULL DEFAULT '',
    stock          BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_billing_products_name ON billing_products (name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_products`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_bills",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_bills (
    id             TEXT PRIMARY KEY,
    customer_id    TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'open',
    payment_method TEXT NOT NULL DEFAULT '',
    total_quantity BIGINT NOT NULL DEFAULT 0,
    total_amount   BIGINT NOT NULL DEFAULT 0,
    total_currency TEXT NOT NULL DEFAULT '',
    paid_at        TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_billing_bills_customer ON billing_bills (customer_id);
CREATE INDEX IF NOT EXISTS idx_billing_bills_status ON billing_bills (customer_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_bills`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_bill_items",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_bill_items (
    id            TEXT PRIMARY KEY,
    bill_id       TEXT NOT NULL DEFAULT '',
    product_id    TEXT NOT NULL DEFAULT '',
    quantity      BIGINT NOT NULL DEFAULT 0,
    rate_amount   BIGINT NOT NULL DEFAULT 0,
    rate_currency TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_billing_items_bill_product ON billing_bill_items (bill_id, product_id);
CREATE INDEX IF NOT EXISTS idx_billing_items_product ON billing_bill_items (product_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_bill_items`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_receipts",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_receipts (
    id                TEXT PRIMARY KEY,
    bill_id           TEXT NOT NULL DEFAULT '',
    customer_id       TEXT NOT NULL DEFAULT '',
    method            TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'settled',
    total_amount      BIGINT NOT NULL DEFAULT 0,
    total_currency    TEXT NOT NULL DEFAULT '',
    tendered_amount   BIGINT NOT NULL DEFAULT 0,
    tendered_currency TEXT NOT NULL DEFAULT '',
    change_amount     BIGINT NOT NULL DEFAULT 0,
    change_currency   TEXT NOT NULL DEFAULT '',
    reference         TEXT NOT NULL DEFAULT '',
    settled_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_billing_receipts_bill ON billing_receipts (bill_id);
CREATE INDEX IF NOT EXISTS idx_billing_receipts_customer ON billing_receipts (customer_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_receipts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_feedback",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_feedback (
    id          TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL DEFAULT '',
    rating      INT NOT NULL DEFAULT 0,
    comments    TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_billing_feedback_customer ON billing_feedback (customer_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_feedback`)
				return err
			},
		},
	)
}
