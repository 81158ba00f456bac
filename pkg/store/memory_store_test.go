package store

import (
	"testing"

	"github.com/hughgramel/readfluent/pkg/domain"
)

func TestMetadataLifecycle(t *testing.T) {
	s := NewMemoryStore()

	first, err := s.SaveMetadata(domain.BookMetadata{UserID: "u1", BookID: "b1", Title: "First"})
	if err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	if first.ID == "" {
		t.Error("SaveMetadata() did not assign ID")
	}
	if first.DateAdded.IsZero() {
		t.Error("SaveMetadata() did not assign DateAdded")
	}
	if _, err := s.SaveMetadata(domain.BookMetadata{UserID: "u1", BookID: "b2", Title: "Second"}); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	if _, err := s.SaveMetadata(domain.BookMetadata{UserID: "u2", BookID: "b3", Title: "Other user"}); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	list, err := s.ListMetadata("u1")
	if err != nil {
		t.Fatalf("ListMetadata() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].BookID != "b2" || list[1].BookID != "b1" {
		t.Errorf("list order = %q, %q, want newest first", list[0].BookID, list[1].BookID)
	}

	md, ok, err := s.GetMetadata("u1", "b1")
	if err != nil || !ok {
		t.Fatalf("GetMetadata() = ok %v, err %v", ok, err)
	}
	if md.Title != "First" {
		t.Errorf("Title = %q, want %q", md.Title, "First")
	}
	if _, ok, _ := s.GetMetadata("u2", "b1"); ok {
		t.Error("GetMetadata() found record across users")
	}
}

func TestUpdateMetadata(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.SaveMetadata(domain.BookMetadata{UserID: "u1", BookID: "b1"}); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	section := 4
	done := true
	if err := s.UpdateMetadata("u1", "b1", domain.MetadataUpdate{CurrentSection: &section, Completed: &done}); err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}
	md, _, _ := s.GetMetadata("u1", "b1")
	if md.CurrentSection != 4 || !md.Completed {
		t.Errorf("after update: currentSection = %d, completed = %v", md.CurrentSection, md.Completed)
	}

	// Partial update leaves the other field alone.
	section = 7
	if err := s.UpdateMetadata("u1", "b1", domain.MetadataUpdate{CurrentSection: &section}); err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}
	md, _, _ = s.GetMetadata("u1", "b1")
	if md.CurrentSection != 7 || !md.Completed {
		t.Errorf("after partial update: currentSection = %d, completed = %v", md.CurrentSection, md.Completed)
	}

	// Updating a record that does not exist succeeds silently.
	if err := s.UpdateMetadata("u1", "no-such-book", domain.MetadataUpdate{Completed: &done}); err != nil {
		t.Errorf("UpdateMetadata() on absent record error = %v, want nil", err)
	}
}

func TestDeleteMetadataRemovesAllMatching(t *testing.T) {
	s := NewMemoryStore()
	for _, md := range []domain.BookMetadata{
		{UserID: "u1", BookID: "b1"},
		{UserID: "u2", BookID: "b1"},
		{UserID: "u1", BookID: "b2"},
	} {
		if _, err := s.SaveMetadata(md); err != nil {
			t.Fatalf("SaveMetadata() error = %v", err)
		}
	}

	if err := s.DeleteMetadata("b1"); err != nil {
		t.Fatalf("DeleteMetadata() error = %v", err)
	}
	if _, ok, _ := s.GetMetadata("u1", "b1"); ok {
		t.Error("u1/b1 still present after delete")
	}
	if _, ok, _ := s.GetMetadata("u2", "b1"); ok {
		t.Error("u2/b1 still present after delete")
	}
	if _, ok, _ := s.GetMetadata("u1", "b2"); !ok {
		t.Error("u1/b2 removed by unrelated delete")
	}
}

func TestWordTracking(t *testing.T) {
	s := NewMemoryStore()

	if err := s.SetWords("u1", []string{"perro", "gato"}, domain.WordKnown); err != nil {
		t.Fatalf("SetWords() error = %v", err)
	}
	if err := s.SetWord("u1", "perro", domain.WordIgnored); err != nil {
		t.Fatalf("SetWord() error = %v", err)
	}
	if err := s.SetWord("u2", "perro", domain.WordTracking); err != nil {
		t.Fatalf("SetWord() error = %v", err)
	}

	words, err := s.ListWords("u1")
	if err != nil {
		t.Fatalf("ListWords() error = %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words["perro"] != domain.WordIgnored {
		t.Errorf("perro = %q, want %q (last write wins)", words["perro"], domain.WordIgnored)
	}
	if words["gato"] != domain.WordKnown {
		t.Errorf("gato = %q, want %q", words["gato"], domain.WordKnown)
	}

	if err := s.RemoveWord("u1", "perro"); err != nil {
		t.Fatalf("RemoveWord() error = %v", err)
	}
	if err := s.RemoveWord("u1", "perro"); err != nil {
		t.Errorf("RemoveWord() repeated error = %v, want nil", err)
	}
	words, _ = s.ListWords("u1")
	if _, ok := words["perro"]; ok {
		t.Error("perro still present after removal")
	}

	other, _ := s.ListWords("u2")
	if other["perro"] != domain.WordTracking {
		t.Errorf("u2 perro = %q, want %q (users isolated)", other["perro"], domain.WordTracking)
	}
}

func TestSentences(t *testing.T) {
	s := NewMemoryStore()

	a, err := s.AddSentence("u1", "primera frase")
	if err != nil {
		t.Fatalf("AddSentence() error = %v", err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Errorf("AddSentence() returned incomplete record: %+v", a)
	}
	b, _ := s.AddSentence("u1", "segunda frase")

	list, err := s.ListSentences("u1")
	if err != nil {
		t.Fatalf("ListSentences() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("list order = %q, %q, want newest first", list[0].Text, list[1].Text)
	}

	if err := s.RemoveSentence("u1", a.ID); err != nil {
		t.Fatalf("RemoveSentence() error = %v", err)
	}
	list, _ = s.ListSentences("u1")
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("after removal list = %+v, want only %q", list, b.Text)
	}
}

func TestReadingSessions(t *testing.T) {
	s := NewMemoryStore()

	first, err := s.AddReadingSession(domain.ReadingSession{UserID: "u1", BookID: "b1", BookTitle: "T", SectionID: "s1", WordCount: 120})
	if err != nil {
		t.Fatalf("AddReadingSession() error = %v", err)
	}
	if first.ID == "" || first.Timestamp.IsZero() {
		t.Errorf("AddReadingSession() returned incomplete record: %+v", first)
	}
	second, _ := s.AddReadingSession(domain.ReadingSession{UserID: "u1", BookID: "b1", SectionID: "s2", WordCount: 80})

	list, err := s.ListReadingSessions("u1")
	if err != nil {
		t.Fatalf("ListReadingSessions() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("ListReadingSessions() not newest first")
	}
}

func TestPreferences(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, err := s.GetPreferences("u1"); err != nil || ok {
		t.Fatalf("GetPreferences() before save = ok %v, err %v", ok, err)
	}

	err := s.SavePreferences(domain.Preferences{UserID: "u1", Settings: map[string]any{"fontSize": float64(18)}})
	if err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	p, ok, err := s.GetPreferences("u1")
	if err != nil || !ok {
		t.Fatalf("GetPreferences() = ok %v, err %v", ok, err)
	}
	if p.Settings["fontSize"] != float64(18) {
		t.Errorf("fontSize = %v, want 18", p.Settings["fontSize"])
	}
	if p.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not assigned")
	}

	err = s.SavePreferences(domain.Preferences{UserID: "u1", Settings: map[string]any{"theme": "dark"}})
	if err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}
	p, _, _ = s.GetPreferences("u1")
	if _, ok := p.Settings["fontSize"]; ok {
		t.Error("SavePreferences() merged instead of replacing")
	}
	if p.Settings["theme"] != "dark" {
		t.Errorf("theme = %v, want dark", p.Settings["theme"])
	}
}
