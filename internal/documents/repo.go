package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	// Create stores doc and returns it with its storage id assigned.
	Create(ctx context.Context, doc Document) (Document, error)
	// ListByOwner returns the owner's documents, archived or not, newest update first.
	ListByOwner(ctx context.Context, userID string, archived bool) ([]Document, error)
	// Get returns a document by documentId regardless of owner.
	Get(ctx context.Context, documentID string) (Document, error)
	// GetComposite returns the owner's document with children loaded.
	GetComposite(ctx context.Context, userID, documentID string) (Composite, error)
	// GetPublicComposite returns a public document with children loaded.
	GetPublicComposite(ctx context.Context, documentID string) (Composite, error)
	// Update applies in atomically and returns the status held before the update.
	Update(ctx context.Context, userID, documentID string, in UpdateDocumentInput, now time.Time) (Status, error)
	// SetThumbnail records the stored thumbnail key.
	SetThumbnail(ctx context.Context, userID, documentID, key string, now time.Time) error
}
