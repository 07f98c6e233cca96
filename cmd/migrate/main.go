package main

import (
	"os"

	"notevault-be/internal/config"
	"notevault-be/internal/model"
	"notevault-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1}, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	// 3. Pre-Migration: Extensions
	color.Yellow("Step 1: Setting up extensions")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Yellow("Warn: Failed to create pgcrypto: %v. Continuing...", err)
	}

	// 4. AutoMigrate All Models
	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.Note{},
		&model.Tag{},
		&model.NoteTag{},
		&model.Attachment{},
		&model.SharedNote{},
		&model.NoteTemplate{},
		&model.Notification{},
		&model.AuditLog{},
	}
	color.Yellow("Step 2: Running AutoMigrate for %d tables", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 5. Post-Migration: constraints and partial indexes GORM tags cannot express
	color.Yellow("Step 3: Creating constraints and indexes")
	postMigrationSQL := []string{
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_notes_user') THEN
		     ALTER TABLE notes ADD CONSTRAINT fk_notes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_notes_category') THEN
		     ALTER TABLE notes ADD CONSTRAINT fk_notes_category FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_note_tags_note') THEN
		     ALTER TABLE note_tags ADD CONSTRAINT fk_note_tags_note FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_note_tags_tag') THEN
		     ALTER TABLE note_tags ADD CONSTRAINT fk_note_tags_tag FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_attachments_note') THEN
		     ALTER TABLE attachments ADD CONSTRAINT fk_attachments_note FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_shared_notes_note') THEN
		     ALTER TABLE shared_notes ADD CONSTRAINT fk_shared_notes_note FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE;
		   END IF;
		 END $$;`,
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_shared_notes_permission') THEN
		     ALTER TABLE shared_notes ADD CONSTRAINT chk_shared_notes_permission CHECK (permission IN ('read', 'edit'));
		   END IF;
		 END $$;`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_active ON notes (user_id, created_at DESC) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_trashed ON notes (user_id, deleted_at DESC) WHERE deleted_at IS NOT NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("Success: Database migration completed.")
}
