package store

import (
	"github.com/hughgramel/readfluent/pkg/domain"
)

// Store defines persistence operations for book metadata, vocabulary words,
// saved sentences, reading sessions, and reader preferences. All operations
// are scoped to a single user ID passed explicitly by the caller; the store
// never reads identity from ambient state.
//
// Consistency is last-write-wins throughout: there is no optimistic
// concurrency check and no history kept.
type Store interface {
	// Book metadata. Records are summaries kept apart from the full book
	// blob so listing a library never loads book bodies.
	SaveMetadata(md domain.BookMetadata) (domain.BookMetadata, error)
	ListMetadata(userID string) ([]domain.BookMetadata, error)
	GetMetadata(userID, bookID string) (domain.BookMetadata, bool, error)
	// UpdateMetadata applies a partial merge. When no record matches it is
	// a silent no-op, tolerating races between listing and updating.
	UpdateMetadata(userID, bookID string, update domain.MetadataUpdate) error
	// DeleteMetadata removes every record matching bookID; duplicates are
	// legitimate since metadata has no uniqueness constraint.
	DeleteMetadata(bookID string) error

	// Words. The word string itself is the key (case-sensitive). Absence of
	// a record is the "unknown" state; RemoveWord is how a word becomes
	// unknown again, and removing an absent word is a no-op.
	ListWords(userID string) (map[string]domain.WordType, error)
	SetWord(userID, word string, t domain.WordType) error
	// SetWords upserts many words to the same type as a single
	// all-or-nothing batch.
	SetWords(userID string, words []string, t domain.WordType) error
	RemoveWord(userID, word string) error

	// Sentences, ordered by creation time descending. Duplicate text is
	// permitted.
	AddSentence(userID, text string) (domain.UserSentence, error)
	ListSentences(userID string) ([]domain.UserSentence, error)
	RemoveSentence(userID, id string) error

	// Reading sessions.
	AddReadingSession(s domain.ReadingSession) (domain.ReadingSession, error)
	ListReadingSessions(userID string) ([]domain.ReadingSession, error)

	// Reader preferences, one document per user.
	SavePreferences(p domain.Preferences) error
	GetPreferences(userID string) (domain.Preferences, bool, error)
}
