package domain

import "time"

// WordType classifies a word in a user's vocabulary. A fourth logical state,
// "unknown", is represented by the absence of a record rather than a value.
type WordType string

const (
	WordKnown    WordType = "known"
	WordTracking WordType = "tracking"
	WordIgnored  WordType = "ignored"
)

// ValidWordType reports whether t is a storable classification.
func ValidWordType(t WordType) bool {
	switch t {
	case WordKnown, WordTracking, WordIgnored:
		return true
	}
	return false
}

// Book is the full parsed document persisted as a blob. Content is immutable
// once stored; only reading progress on the metadata record changes later.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Sections   []Section `json:"sections"`
	TotalWords int       `json:"totalWords"`
	FileName   string    `json:"fileName"`
	DateAdded  time.Time `json:"dateAdded"`
	Completed  bool      `json:"completed"`
}

// Section is one spine item of a book, flattened to plain text.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

// BookMetadata is the lightweight summary record stored separately from the
// blob so listing a library never fetches full book bodies.
type BookMetadata struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	BookID         string    `json:"bookId"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	FileName       string    `json:"fileName"`
	TotalWords     int       `json:"totalWords"`
	StoragePath    string    `json:"storagePath"`
	DownloadURL    string    `json:"downloadURL"`
	CurrentSection int       `json:"currentSection"`
	Completed      bool      `json:"completed"`
	DateAdded      time.Time `json:"dateAdded"`
}

// MetadataUpdate is a partial merge applied to an existing metadata record.
// Nil fields are left untouched.
type MetadataUpdate struct {
	CurrentSection *int  `json:"currentSection,omitempty"`
	Completed      *bool `json:"completed,omitempty"`
}

// UserSentence is a sentence saved from the reader.
type UserSentence struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReadingSession records one reading sitting.
type ReadingSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	BookID       string    `json:"bookId,omitempty"`
	BookTitle    string    `json:"bookTitle"`
	SectionID    string    `json:"sectionId"`
	SectionTitle string    `json:"sectionTitle"`
	WordCount    int       `json:"wordCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// Preferences holds per-user reader settings as an opaque JSON document.
type Preferences struct {
	UserID    string         `json:"-"`
	Settings  map[string]any `json:"settings"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
