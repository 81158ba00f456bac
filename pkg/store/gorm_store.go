package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hughgramel/readfluent/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&BookMetadataModel{},
		&WordModel{},
		&SentenceModel{},
		&ReadingSessionModel{},
		&PreferencesModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveMetadata creates a metadata record, assigning a document ID and
// stamping DateAdded when unset.
func (s *GormStore) SaveMetadata(md domain.BookMetadata) (domain.BookMetadata, error) {
	if md.ID == "" {
		md.ID = uuid.NewString()
	}
	if md.DateAdded.IsZero() {
		md.DateAdded = time.Now().UTC()
	}
	model := metadataToModel(md)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.BookMetadata{}, err
	}
	return md, nil
}

// ListMetadata returns all of a user's books, newest first.
func (s *GormStore) ListMetadata(userID string) ([]domain.BookMetadata, error) {
	var models []BookMetadataModel
	if err := s.db.Where("user_id = ?", userID).Order("date_added DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.BookMetadata, 0, len(models))
	for _, m := range models {
		res = append(res, metadataFromModel(m))
	}
	return res, nil
}

// GetMetadata returns the first metadata record for (userID, bookID).
func (s *GormStore) GetMetadata(userID, bookID string) (domain.BookMetadata, bool, error) {
	var model BookMetadataModel
	err := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.BookMetadata{}, false, nil
		}
		return domain.BookMetadata{}, false, err
	}
	return metadataFromModel(model), true, nil
}

// UpdateMetadata merges the provided fields into the matching record.
// No matching record is a silent no-op.
func (s *GormStore) UpdateMetadata(userID, bookID string, update domain.MetadataUpdate) error {
	fields := map[string]any{}
	if update.CurrentSection != nil {
		fields["current_section"] = *update.CurrentSection
	}
	if update.Completed != nil {
		fields["completed"] = *update.Completed
	}
	if len(fields) == 0 {
		return nil
	}
	return s.db.Model(&BookMetadataModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Updates(fields).Error
}

// DeleteMetadata removes every record matching bookID.
func (s *GormStore) DeleteMetadata(bookID string) error {
	return s.db.Delete(&BookMetadataModel{}, "book_id = ?", bookID).Error
}

// ListWords returns the user's full word -> classification mapping.
func (s *GormStore) ListWords(userID string) (map[string]domain.WordType, error) {
	var models []WordModel
	if err := s.db.Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make(map[string]domain.WordType, len(models))
	for _, m := range models {
		res[m.Word] = domain.WordType(m.Type)
	}
	return res, nil
}

// SetWord upserts a single classification, overwriting any existing one.
func (s *GormStore) SetWord(userID, word string, t domain.WordType) error {
	return s.upsertWords(s.db, userID, []string{word}, t)
}

// SetWords upserts many words to the same type in one transaction.
func (s *GormStore) SetWords(userID string, words []string, t domain.WordType) error {
	if len(words) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.upsertWords(tx, userID, words, t)
	})
}

func (s *GormStore) upsertWords(tx *gorm.DB, userID string, words []string, t domain.WordType) error {
	models := make([]WordModel, 0, len(words))
	for _, w := range words {
		models = append(models, WordModel{UserID: userID, Word: w, Type: string(t)})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "word"}},
		DoUpdates: clause.AssignmentColumns([]string{"type"}),
	}).Create(&models).Error
}

// RemoveWord deletes the record; this is how a word returns to "unknown".
// Deleting an absent word is a no-op.
func (s *GormStore) RemoveWord(userID, word string) error {
	return s.db.Delete(&WordModel{}, "user_id = ? AND word = ?", userID, word).Error
}

// AddSentence appends a sentence with a server-assigned ID and timestamp.
func (s *GormStore) AddSentence(userID, text string) (domain.UserSentence, error) {
	model := SentenceModel{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.UserSentence{}, err
	}
	return sentenceFromModel(model), nil
}

// ListSentences returns the user's sentences, newest first.
func (s *GormStore) ListSentences(userID string) ([]domain.UserSentence, error) {
	var models []SentenceModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.UserSentence, 0, len(models))
	for _, m := range models {
		res = append(res, sentenceFromModel(m))
	}
	return res, nil
}

// RemoveSentence deletes one sentence owned by the user.
func (s *GormStore) RemoveSentence(userID, id string) error {
	return s.db.Delete(&SentenceModel{}, "user_id = ? AND id = ?", userID, id).Error
}

// AddReadingSession records a reading sitting.
func (s *GormStore) AddReadingSession(sess domain.ReadingSession) (domain.ReadingSession, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Timestamp.IsZero() {
		sess.Timestamp = time.Now().UTC()
	}
	model := ReadingSessionModel{
		ID:           sess.ID,
		UserID:       sess.UserID,
		BookID:       sess.BookID,
		BookTitle:    sess.BookTitle,
		SectionID:    sess.SectionID,
		SectionTitle: sess.SectionTitle,
		WordCount:    sess.WordCount,
		Timestamp:    sess.Timestamp,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.ReadingSession{}, err
	}
	return sess, nil
}

// ListReadingSessions returns the user's sessions, newest first.
func (s *GormStore) ListReadingSessions(userID string) ([]domain.ReadingSession, error) {
	var models []ReadingSessionModel
	if err := s.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ReadingSession, 0, len(models))
	for _, m := range models {
		res = append(res, domain.ReadingSession{
			ID:           m.ID,
			UserID:       m.UserID,
			BookID:       m.BookID,
			BookTitle:    m.BookTitle,
			SectionID:    m.SectionID,
			SectionTitle: m.SectionTitle,
			WordCount:    m.WordCount,
			Timestamp:    m.Timestamp,
		})
	}
	return res, nil
}

// SavePreferences stores or replaces the user's preferences document.
func (s *GormStore) SavePreferences(p domain.Preferences) error {
	payload, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("serialize preferences: %w", err)
	}
	model := PreferencesModel{
		UserID:    p.UserID,
		Settings:  payload,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(&model).Error
}

// GetPreferences loads the user's preferences document.
func (s *GormStore) GetPreferences(userID string) (domain.Preferences, bool, error) {
	var model PreferencesModel
	err := s.db.First(&model, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Preferences{}, false, nil
		}
		return domain.Preferences{}, false, err
	}
	settings := map[string]any{}
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return domain.Preferences{}, false, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return domain.Preferences{
		UserID:    model.UserID,
		Settings:  settings,
		UpdatedAt: model.UpdatedAt,
	}, true, nil
}

func metadataToModel(md domain.BookMetadata) BookMetadataModel {
	return BookMetadataModel{
		ID:             md.ID,
		UserID:         md.UserID,
		BookID:         md.BookID,
		Title:          md.Title,
		Author:         md.Author,
		FileName:       md.FileName,
		TotalWords:     md.TotalWords,
		StoragePath:    md.StoragePath,
		DownloadURL:    md.DownloadURL,
		CurrentSection: md.CurrentSection,
		Completed:      md.Completed,
		DateAdded:      md.DateAdded,
	}
}

func metadataFromModel(m BookMetadataModel) domain.BookMetadata {
	return domain.BookMetadata{
		ID:             m.ID,
		UserID:         m.UserID,
		BookID:         m.BookID,
		Title:          m.Title,
		Author:         m.Author,
		FileName:       m.FileName,
		TotalWords:     m.TotalWords,
		StoragePath:    m.StoragePath,
		DownloadURL:    m.DownloadURL,
		CurrentSection: m.CurrentSection,
		Completed:      m.Completed,
		DateAdded:      m.DateAdded,
	}
}

func sentenceFromModel(m SentenceModel) domain.UserSentence {
	return domain.UserSentence{
		ID:        m.ID,
		UserID:    m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
