// Package database provides the durable data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── decks/           # Deck repository (persistent deck backend)
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./kotoba.db")
//	repo := decks.NewRepository(db.DB)
//	id, err := repo.Add(ctx, &deck)
//
// # Interface Implementations
//
//   - decks.Repository: implements internal/decks.Backend
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the entity to AutoMigrate in database.go
//  5. Add compile-time interface check in internal/interfaces
package database
