package config

const (
	// DefaultDatabasePath is the default path for the deck database
	DefaultDatabasePath = "./kotoba.db"

	// DefaultBackupDir is where scheduled JSON exports are written
	DefaultBackupDir = "./backups"
)
