package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hughgramel/readfluent/pkg/domain"
)

// ErrFetch indicates a book blob download returned a non-success status.
var ErrFetch = errors.New("fetch book blob")

const defaultPresignExpiry = 24 * time.Hour

// BookBlobStore persists full Book documents as JSON blobs under
// books/{userId}/{bookId}.json and raw uploads under epubs/{userId}/{file}.
type BookBlobStore struct {
	objects       ObjectStore
	http          *resty.Client
	presignExpiry time.Duration
}

// NewBookBlobStore wraps an object store with book blob addressing.
func NewBookBlobStore(objects ObjectStore) *BookBlobStore {
	return &BookBlobStore{
		objects:       objects,
		http:          resty.New().SetTimeout(30 * time.Second),
		presignExpiry: defaultPresignExpiry,
	}
}

// StoreBook serializes the book and writes it under its deterministic path,
// returning the storage path and a pre-signed retrieval URL.
func (s *BookBlobStore) StoreBook(ctx context.Context, userID, bookID string, book domain.Book) (string, string, error) {
	payload, err := json.Marshal(book)
	if err != nil {
		return "", "", fmt.Errorf("serialize book: %w", err)
	}
	key := BookBlobKey(userID, bookID)
	if err := s.objects.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return "", "", fmt.Errorf("store book blob: %w", err)
	}
	url, err := s.objects.PresignGet(ctx, key, s.presignExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign book blob: %w", err)
	}
	return key, url, nil
}

// StoreEpub keeps the original uploaded file alongside the parsed document.
func (s *BookBlobStore) StoreEpub(ctx context.Context, userID, fileName string, r io.Reader, size int64) (string, error) {
	key := EpubKey(userID, fileName)
	if err := s.objects.Put(ctx, key, r, size, "application/epub+zip"); err != nil {
		return "", fmt.Errorf("store epub: %w", err)
	}
	return key, nil
}

// FetchBook downloads and decodes a book blob from its retrieval URL.
// The round trip is lossless for the Book schema.
func (s *BookBlobStore) FetchBook(ctx context.Context, downloadURL string) (domain.Book, error) {
	resp, err := s.http.R().SetContext(ctx).Get(downloadURL)
	if err != nil {
		return domain.Book{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.IsError() {
		return domain.Book{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode())
	}
	var book domain.Book
	if err := json.Unmarshal(resp.Body(), &book); err != nil {
		return domain.Book{}, fmt.Errorf("decode book blob: %w", err)
	}
	return book, nil
}

// Delete removes a stored blob. Deleting an absent object is a no-op, so the
// caller can safely retry after partial failures.
func (s *BookBlobStore) Delete(ctx context.Context, storagePath string) error {
	return s.objects.Delete(ctx, storagePath)
}

// BookBlobKey returns the deterministic blob path for a parsed book.
func BookBlobKey(userID, bookID string) string {
	return path.Join("books", userID, bookID+".json")
}

// EpubKey returns the blob path for an original uploaded file.
func EpubKey(userID, fileName string) string {
	return path.Join("epubs", userID, sanitizeFilename(fileName))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "book.epub"
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if r <= 0x7f {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
				b.WriteRune(r)
				lastUnderscore = false
				continue
			}
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "book.epub"
	}
	return out
}
