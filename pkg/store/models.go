package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type BookMetadataModel struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"not null;index"`
	BookID         string `gorm:"not null;index"`
	Title          string `gorm:"not null"`
	Author         string
	FileName       string
	TotalWords     int `gorm:"not null"`
	StoragePath    string
	DownloadURL    string
	CurrentSection int
	Completed      bool
	DateAdded      time.Time `gorm:"not null"`
}

func (BookMetadataModel) TableName() string { return "books" }

type WordModel struct {
	UserID string `gorm:"primaryKey"`
	Word   string `gorm:"primaryKey"`
	Type   string `gorm:"not null"`
}

func (WordModel) TableName() string { return "user_words" }

type SentenceModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (SentenceModel) TableName() string { return "user_sentences" }

type ReadingSessionModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;index"`
	BookID       string
	BookTitle    string
	SectionID    string
	SectionTitle string
	WordCount    int
	Timestamp    time.Time `gorm:"not null;index"`
}

func (ReadingSessionModel) TableName() string { return "reading_sessions" }

type PreferencesModel struct {
	UserID    string         `gorm:"primaryKey"`
	Settings  datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (PreferencesModel) TableName() string { return "user_preferences" }
