// Package testdb opens an in-memory sqlite database carrying the same tables
// as db/migrations, with Postgres-only column types (text[], jsonb) stored as
// text. Repository and handler tests run against it.
package testdb

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		email TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		avatar_url TEXT,
		department TEXT,
		position TEXT,
		access_level INTEGER NOT NULL DEFAULT 4,
		work_status TEXT NOT NULL DEFAULT 'active',
		project_ids TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT,
		status TEXT NOT NULL DEFAULT 'planning',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE project_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		wbs TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT,
		quantity REAL NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE pyc (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author_email TEXT NOT NULL,
		project_id TEXT REFERENCES projects(id),
		approver_email TEXT,
		details TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'draft',
		note TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE dntt (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		requester_email TEXT NOT NULL,
		project_id TEXT REFERENCES projects(id),
		status TEXT NOT NULL DEFAULT 'pending',
		note TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_email TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'info',
		is_read BOOLEAN NOT NULL DEFAULT 0,
		link TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL DEFAULT 'Other' CHECK (type IN ('Document', 'Image', 'Attachment', 'Other')),
		url TEXT NOT NULL,
		uploaded_by TEXT,
		created_at DATETIME
	)`,
	`CREATE INDEX idx_files_owner ON files (table_name, ref_id)`,
	`CREATE TABLE branches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		address TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE departments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		parent_id INTEGER REFERENCES departments(id),
		created_at DATETIME
	)`,
	`CREATE TABLE job_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE job_levels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE job_functions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE warehouses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		project_id TEXT REFERENCES projects(id),
		address TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		tax_code TEXT,
		phone TEXT,
		address TEXT,
		created_at DATETIME
	)`,
}

// Open returns a fresh database. It is pinned to one connection because each
// sqlite :memory: connection is its own database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return db, nil
}
