package app

import (
	"context"
	"fmt"
	"io"

	"github.com/hughgramel/readfluent/pkg/domain"
	"github.com/hughgramel/readfluent/pkg/store"
)

// BlobGateway is the blob half of the persistence gateway: full book
// documents and raw uploads, addressed by path.
type BlobGateway interface {
	StoreBook(ctx context.Context, userID, bookID string, book domain.Book) (storagePath, downloadURL string, err error)
	StoreEpub(ctx context.Context, userID, fileName string, r io.Reader, size int64) (string, error)
	FetchBook(ctx context.Context, downloadURL string) (domain.Book, error)
	Delete(ctx context.Context, storagePath string) error
}

// Config wires the application core. Both stores are injected so tests can
// swap in fakes; nothing here reads global state.
type Config struct {
	Store store.Store
	Blobs BlobGateway
}

// App is the application core: the library pipeline plus the word, sentence,
// session, and preference stores. Every operation takes the acting user ID
// explicitly.
type App struct {
	store store.Store
	blobs BlobGateway
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Blobs == nil {
		return nil, fmt.Errorf("blob gateway required")
	}
	return &App{store: cfg.Store, blobs: cfg.Blobs}, nil
}
