package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmorren/selah/internal/catalog"
	"github.com/tmorren/selah/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Spread{},
		&entities.SpreadStage{},
		&entities.SpreadImage{},
		&entities.RegenRequest{},
		&entities.Favorite{},
		&entities.ReadMark{},
		&entities.ImageSelection{},
		&entities.LibraryEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedEntry is one passage-unit from the seeding catalog.
type SeedEntry struct {
	BookCode  string `json:"book"`
	Seq       int    `json:"seq"`
	Chapter   int    `json:"chapter"`
	VerseFrom int    `json:"verse_from"`
	ChapterTo int    `json:"chapter_to,omitempty"`
	VerseTo   int    `json:"verse_to"`
}

// SeedSpread creates a spread skeleton with its four pending stage rows.
// Existing spreads are left untouched so seeding is idempotent.
func (d *Database) SeedSpread(entry SeedEntry) (*entities.Spread, bool, error) {
	book, ok := catalog.BookByCode(entry.BookCode)
	if !ok {
		return nil, false, fmt.Errorf("unknown book code %q", entry.BookCode)
	}

	code := catalog.FormatCode(book.Code, entry.Seq)

	var existing entities.Spread
	err := d.DB.Where("code = ?", code).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chapterTo := entry.ChapterTo
	if chapterTo == 0 {
		chapterTo = entry.Chapter
	}

	spread := &entities.Spread{
		Code:      code,
		Testament: book.Testament,
		Book:      book.Name,
		BookOrder: book.Order,
		Chapter:   entry.Chapter,
		VerseFrom: entry.VerseFrom,
		Chapter2:  chapterTo,
		VerseTo:   entry.VerseTo,
	}
	for i, name := range entities.StageOrder() {
		spread.Stages = append(spread.Stages, entities.SpreadStage{
			Name:     name,
			Position: i,
			State:    entities.StageStatePending,
		})
	}

	if err := d.DB.Create(spread).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create spread %s: %w", code, err)
	}

	return spread, true, nil
}
