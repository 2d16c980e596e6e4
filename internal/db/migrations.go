package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'disposal_status') THEN
			CREATE TYPE disposal_status AS ENUM ('Pending', 'Accepted', 'Rejected', 'Completed', 'Cancelled');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS workers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		current_lat DOUBLE PRECISION,
		current_lng DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL UNIQUE,
		name TEXT NOT NULL,
		profile_image TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_companies_name ON companies (name);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_companies_contact_number ON companies (contact_number) WHERE contact_number <> '';`,
	`CREATE TABLE IF NOT EXISTS company_addresses (
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		country TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		position SERIAL,
		PRIMARY KEY (company_id, name)
	);`,
	`CREATE TABLE IF NOT EXISTS pick_up_schedules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		day VARCHAR(16) NOT NULL,
		time TEXT NOT NULL,
		address_name TEXT NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_pick_up_schedules_day ON pick_up_schedules (company_id, day);`,
	`CREATE TABLE IF NOT EXISTS materials (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL UNIQUE,
		type VARCHAR(16) NOT NULL,
		unit VARCHAR(16) NOT NULL,
		conversion_factor DOUBLE PRECISION NOT NULL,
		price_per_unit NUMERIC(18,4) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		co2_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		water_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		energy_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		trees_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		landfill_space_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		oil_saved_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_materials_type ON materials (type);`,
	`CREATE TABLE IF NOT EXISTS achievements (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		badge_icon TEXT NOT NULL,
		category VARCHAR(16) NOT NULL,
		stat_type VARCHAR(32) NOT NULL DEFAULT '',
		material_type VARCHAR(16) NOT NULL DEFAULT '',
		threshold DOUBLE PRECISION NOT NULL,
		level VARCHAR(16) NOT NULL DEFAULT 'bronze'
	);`,
	`CREATE TABLE IF NOT EXISTS disposals (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		company_id UUID NOT NULL REFERENCES companies(id),
		worker_id UUID REFERENCES workers(id),
		disposal_date TIMESTAMPTZ NOT NULL,
		address_name TEXT NOT NULL,
		status disposal_status NOT NULL DEFAULT 'Pending',
		rejection_message TEXT,
		total_price NUMERIC(18,4) NOT NULL DEFAULT 0,
		impact_snapshot JSONB,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_disposals_rejection CHECK (status <> 'Rejected' OR COALESCE(rejection_message, '') <> '')
	);`,
	`CREATE INDEX IF NOT EXISTS idx_disposals_status ON disposals (status);`,
	`CREATE INDEX IF NOT EXISTS idx_disposals_company_id ON disposals (company_id);`,
	`CREATE INDEX IF NOT EXISTS idx_disposals_worker_id ON disposals (worker_id) WHERE worker_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS disposal_materials (
		disposal_id UUID NOT NULL REFERENCES disposals(id) ON DELETE CASCADE,
		position INT NOT NULL,
		material_id UUID NOT NULL REFERENCES materials(id),
		quantity DOUBLE PRECISION NOT NULL CHECK (quantity > 0),
		calculated_price NUMERIC(18,4) NOT NULL,
		PRIMARY KEY (disposal_id, position)
	);`,
	`CREATE TABLE IF NOT EXISTS company_stats (
		company_id UUID PRIMARY KEY REFERENCES companies(id) ON DELETE CASCADE,
		total_disposals BIGINT NOT NULL DEFAULT 0,
		total_co2_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_water_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_energy_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_trees_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_landfill_space_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_oil_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
		plastic_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		paper_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		metal_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		glass_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		electronic_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		organic_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS company_disposal_history (
		disposal_id UUID PRIMARY KEY REFERENCES disposals(id),
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		date TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_company_disposal_history_company ON company_disposal_history (company_id, date);`,
	`CREATE TABLE IF NOT EXISTS company_achievements (
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		achievement_id UUID NOT NULL REFERENCES achievements(id),
		disposal_id UUID REFERENCES disposals(id),
		earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (company_id, achievement_id)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
