package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hughgramel/readfluent/internal/epub"
	"github.com/hughgramel/readfluent/pkg/domain"
	"github.com/hughgramel/readfluent/pkg/storage"
)

// UploadBook ingests an uploaded EPUB, stores the parsed document as a blob,
// and saves a metadata summary. Nothing is persisted when ingestion fails.
func (a *App) UploadBook(ctx context.Context, userID, fileName string, data []byte) (domain.BookMetadata, error) {
	book, err := epub.Ingest(data, fileName)
	if err != nil {
		return domain.BookMetadata{}, err
	}

	// Keep the original file next to the parsed document. Losing the raw
	// copy does not lose the book, so a failure here only logs.
	if _, err := a.blobs.StoreEpub(ctx, userID, fileName, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Warn("store original epub failed", "user_id", userID, "file", fileName, "err", err)
	}

	storagePath, downloadURL, err := a.blobs.StoreBook(ctx, userID, book.ID, book)
	if err != nil {
		return domain.BookMetadata{}, fmt.Errorf("store book: %w", err)
	}

	md, err := a.store.SaveMetadata(domain.BookMetadata{
		UserID:      userID,
		BookID:      book.ID,
		Title:       book.Title,
		Author:      book.Author,
		FileName:    book.FileName,
		TotalWords:  book.TotalWords,
		StoragePath: storagePath,
		DownloadURL: downloadURL,
		DateAdded:   book.DateAdded,
	})
	if err != nil {
		return domain.BookMetadata{}, fmt.Errorf("save metadata: %w", err)
	}
	return md, nil
}

// ListBooks returns all of the user's metadata records, newest first.
func (a *App) ListBooks(userID string) ([]domain.BookMetadata, error) {
	return a.store.ListMetadata(userID)
}

// GetBook loads the full book document via its metadata record.
func (a *App) GetBook(ctx context.Context, userID, bookID string) (domain.Book, error) {
	md, ok, err := a.store.GetMetadata(userID, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if !ok {
		return domain.Book{}, ErrNotFound
	}
	book, err := a.blobs.FetchBook(ctx, md.DownloadURL)
	if err != nil {
		// Readers cannot distinguish a missing blob from a missing book.
		if errors.Is(err, storage.ErrFetch) {
			return domain.Book{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return domain.Book{}, err
	}
	return book, nil
}

// UpdateBook merges reading-progress fields into the metadata record.
// A missing record is a silent no-op by design.
func (a *App) UpdateBook(userID, bookID string, update domain.MetadataUpdate) error {
	return a.store.UpdateMetadata(userID, bookID, update)
}

// DeleteBook removes all metadata records for the book, then its blob.
// Partial failure is not rolled back; both sides are idempotent to retry.
func (a *App) DeleteBook(ctx context.Context, userID, bookID string) error {
	md, ok, err := a.store.GetMetadata(userID, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := a.store.DeleteMetadata(bookID); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	if md.StoragePath != "" {
		if err := a.blobs.Delete(ctx, md.StoragePath); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
	}
	return nil
}
