package app

import (
	"github.com/hughgramel/readfluent/pkg/domain"
)

// AddReadingSession records a reading sitting for the user.
func (a *App) AddReadingSession(userID string, sess domain.ReadingSession) (domain.ReadingSession, error) {
	sess.UserID = userID
	return a.store.AddReadingSession(sess)
}

// ListReadingSessions returns the user's sessions, newest first.
func (a *App) ListReadingSessions(userID string) ([]domain.ReadingSession, error) {
	return a.store.ListReadingSessions(userID)
}

// GetPreferences loads the user's reader settings. A user with no saved
// settings gets an empty document, not an error.
func (a *App) GetPreferences(userID string) (domain.Preferences, error) {
	prefs, ok, err := a.store.GetPreferences(userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	if !ok {
		return domain.Preferences{UserID: userID, Settings: map[string]any{}}, nil
	}
	return prefs, nil
}

// SavePreferences stores or replaces the user's reader settings.
func (a *App) SavePreferences(userID string, settings map[string]any) error {
	return a.store.SavePreferences(domain.Preferences{UserID: userID, Settings: settings})
}
