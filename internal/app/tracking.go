package app

import (
	"fmt"

	"github.com/hughgramel/readfluent/pkg/domain"
)

// ListWords returns the user's word -> classification mapping. Words absent
// from the mapping are in the logical "unknown" state.
func (a *App) ListWords(userID string) (map[string]domain.WordType, error) {
	return a.store.ListWords(userID)
}

// SetWord classifies a single word, overwriting any prior classification.
// An empty type defaults to tracking.
func (a *App) SetWord(userID, word string, t domain.WordType) error {
	t, err := normalizeWordType(t)
	if err != nil {
		return err
	}
	return a.store.SetWord(userID, word, t)
}

// SetWords classifies many words to the same type as one all-or-nothing
// batch, used when bulk-importing a word list.
func (a *App) SetWords(userID string, words []string, t domain.WordType) error {
	t, err := normalizeWordType(t)
	if err != nil {
		return err
	}
	return a.store.SetWords(userID, words, t)
}

// RemoveWord deletes the classification record, returning the word to
// "unknown". Removing an absent word is a no-op, not an error.
func (a *App) RemoveWord(userID, word string) error {
	return a.store.RemoveWord(userID, word)
}

func normalizeWordType(t domain.WordType) (domain.WordType, error) {
	if t == "" {
		return domain.WordTracking, nil
	}
	if !domain.ValidWordType(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWordType, t)
	}
	return t, nil
}

// AddSentence saves a sentence exactly as captured from the reader.
func (a *App) AddSentence(userID, text string) (domain.UserSentence, error) {
	return a.store.AddSentence(userID, text)
}

// ListSentences returns saved sentences, newest first.
func (a *App) ListSentences(userID string) ([]domain.UserSentence, error) {
	return a.store.ListSentences(userID)
}

// RemoveSentence deletes one saved sentence.
func (a *App) RemoveSentence(userID, id string) error {
	return a.store.RemoveSentence(userID, id)
}
