package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hughgramel/readfluent/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs tests and local
// development without Postgres, with the same last-write-wins semantics.
type MemoryStore struct {
	mu        sync.RWMutex
	metadata  []domain.BookMetadata
	words     map[string]map[string]domain.WordType // userID -> word -> type
	sentences map[string][]domain.UserSentence      // userID -> insertion order
	sessions  map[string][]domain.ReadingSession
	prefs     map[string]domain.Preferences
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		words:     make(map[string]map[string]domain.WordType),
		sentences: make(map[string][]domain.UserSentence),
		sessions:  make(map[string][]domain.ReadingSession),
		prefs:     make(map[string]domain.Preferences),
	}
}

// SaveMetadata appends a metadata record, assigning ID and DateAdded.
func (m *MemoryStore) SaveMetadata(md domain.BookMetadata) (domain.BookMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if md.ID == "" {
		md.ID = uuid.NewString()
	}
	if md.DateAdded.IsZero() {
		md.DateAdded = time.Now().UTC()
	}
	m.metadata = append(m.metadata, md)
	return md, nil
}

// ListMetadata returns the user's records, newest first.
func (m *MemoryStore) ListMetadata(userID string) ([]domain.BookMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.BookMetadata, 0)
	for i := len(m.metadata) - 1; i >= 0; i-- {
		if m.metadata[i].UserID == userID {
			res = append(res, m.metadata[i])
		}
	}
	return res, nil
}

// GetMetadata returns the first record for (userID, bookID).
func (m *MemoryStore) GetMetadata(userID, bookID string) (domain.BookMetadata, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, md := range m.metadata {
		if md.UserID == userID && md.BookID == bookID {
			return md, true, nil
		}
	}
	return domain.BookMetadata{}, false, nil
}

// UpdateMetadata merges fields into matching records; absent record is a no-op.
func (m *MemoryStore) UpdateMetadata(userID, bookID string, update domain.MetadataUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.metadata {
		if m.metadata[i].UserID != userID || m.metadata[i].BookID != bookID {
			continue
		}
		if update.CurrentSection != nil {
			m.metadata[i].CurrentSection = *update.CurrentSection
		}
		if update.Completed != nil {
			m.metadata[i].Completed = *update.Completed
		}
	}
	return nil
}

// DeleteMetadata removes every record matching bookID.
func (m *MemoryStore) DeleteMetadata(bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.metadata[:0]
	for _, md := range m.metadata {
		if md.BookID != bookID {
			kept = append(kept, md)
		}
	}
	m.metadata = kept
	return nil
}

// ListWords returns a copy of the user's word mapping.
func (m *MemoryStore) ListWords(userID string) (map[string]domain.WordType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string]domain.WordType, len(m.words[userID]))
	for w, t := range m.words[userID] {
		res[w] = t
	}
	return res, nil
}

// SetWord upserts one classification.
func (m *MemoryStore) SetWord(userID, word string, t domain.WordType) error {
	return m.SetWords(userID, []string{word}, t)
}

// SetWords upserts a batch to the same type.
func (m *MemoryStore) SetWords(userID string, words []string, t domain.WordType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser := m.words[userID]
	if byUser == nil {
		byUser = make(map[string]domain.WordType)
		m.words[userID] = byUser
	}
	for _, w := range words {
		byUser[w] = t
	}
	return nil
}

// RemoveWord deletes the record; absent word is a no-op.
func (m *MemoryStore) RemoveWord(userID, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.words[userID], word)
	return nil
}

// AddSentence appends a sentence with server-assigned ID and timestamp.
func (m *MemoryStore) AddSentence(userID, text string) (domain.UserSentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sentence := domain.UserSentence{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	m.sentences[userID] = append(m.sentences[userID], sentence)
	return sentence, nil
}

// ListSentences returns the user's sentences, newest first.
func (m *MemoryStore) ListSentences(userID string) ([]domain.UserSentence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.sentences[userID]
	res := make([]domain.UserSentence, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		res = append(res, stored[i])
	}
	return res, nil
}

// RemoveSentence deletes one sentence owned by the user.
func (m *MemoryStore) RemoveSentence(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.sentences[userID]
	kept := stored[:0]
	for _, s := range stored {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.sentences[userID] = kept
	return nil
}

// AddReadingSession records a reading sitting.
func (m *MemoryStore) AddReadingSession(sess domain.ReadingSession) (domain.ReadingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Timestamp.IsZero() {
		sess.Timestamp = time.Now().UTC()
	}
	m.sessions[sess.UserID] = append(m.sessions[sess.UserID], sess)
	return sess, nil
}

// ListReadingSessions returns the user's sessions, newest first.
func (m *MemoryStore) ListReadingSessions(userID string) ([]domain.ReadingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.sessions[userID]
	res := make([]domain.ReadingSession, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		res = append(res, stored[i])
	}
	return res, nil
}

// SavePreferences stores or replaces the user's preferences document.
func (m *MemoryStore) SavePreferences(p domain.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	m.prefs[p.UserID] = p
	return nil
}

// GetPreferences loads the user's preferences document.
func (m *MemoryStore) GetPreferences(userID string) (domain.Preferences, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	return p, ok, nil
}
