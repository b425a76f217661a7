package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Repo  DocumentsRepo
	Store object.ObjectStore
	Now   func() time.Time
}

// UpdateResult is the outcome of Update.
type UpdateResult struct {
	Document       Composite
	PreviousStatus Status
}

// Transition returns "from->to" when the update changed status.
func (r UpdateResult) Transition() string {
	if r.PreviousStatus == "" || r.PreviousStatus == r.Document.Status {
		return ""
	}
	return string(r.PreviousStatus) + "->" + string(r.Document.Status)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records a new document owned by the caller.
func (s *Service) Create(ctx context.Context, id auth.Identity, in CreateDocumentInput) (Document, error) {
	if id.ID == "" {
		return Document{}, errors.New("user id required")
	}
	if err := in.Validate(); err != nil {
		return Document{}, err
	}

	now := s.now()
	doc := Document{
		DocumentID:      uuid.NewString(),
		UserID:          id.ID,
		Title:           in.Title,
		Summary:         in.Summary,
		ThemeColor:      defaultThemeColor,
		Thumbnail:       in.Thumbnail,
		CurrentPosition: defaultCurrentPosition,
		Status:          StatusPrivate,
		AuthorName:      id.DisplayName(),
		AuthorEmail:     strings.TrimSpace(id.Email),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.ThemeColor != nil && strings.TrimSpace(*in.ThemeColor) != "" {
		doc.ThemeColor = strings.TrimSpace(*in.ThemeColor)
	}
	if in.CurrentPosition != nil {
		doc.CurrentPosition = *in.CurrentPosition
	}
	if in.Status != nil {
		doc.Status = *in.Status
	}

	created, err := s.Repo.Create(ctx, doc)
	if err != nil {
		return Document{}, err
	}
	metrics.DocumentsCreated.Inc()
	telemetry.Info("document.created", map[string]any{
		"document_id": created.DocumentID,
		"user_id":     created.UserID,
		"status":      string(created.Status),
	})
	return created, nil
}

// ListMine returns the caller's non-archived documents.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Document, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByOwner(ctx, userID, false)
}

// ListTrash returns the caller's archived documents.
func (s *Service) ListTrash(ctx context.Context, userID string) ([]Document, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByOwner(ctx, userID, true)
}

// Get returns the caller's document with children, or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Composite, error) {
	if strings.TrimSpace(documentID) == "" {
		return Composite{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	doc, err := s.Repo.GetComposite(ctx, userID, documentID)
	recordRead("owner", err)
	return doc, err
}

// GetPublic returns a public document with children, or ErrNotFound.
func (s *Service) GetPublic(ctx context.Context, documentID string) (Composite, error) {
	if strings.TrimSpace(documentID) == "" {
		return Composite{}, ErrNotFound
	}
	doc, err := s.Repo.GetPublicComposite(ctx, documentID)
	recordRead("public", err)
	return doc, err
}

// Update applies in to the caller's document and returns the new composite.
func (s *Service) Update(ctx context.Context, userID, documentID string, in UpdateDocumentInput) (UpdateResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return UpdateResult{}, fmt.Errorf("%w: documentId is required", ErrInvalidInput)
	}
	if err := in.Validate(); err != nil {
		return UpdateResult{}, err
	}

	prev, err := s.Repo.Update(ctx, userID, documentID, in, s.now())
	if err != nil {
		return UpdateResult{}, err
	}
	doc, err := s.Repo.GetComposite(ctx, userID, documentID)
	if err != nil {
		return UpdateResult{}, err
	}

	res := UpdateResult{Document: doc, PreviousStatus: prev}
	metrics.DocumentsUpdated.Inc()
	fields := map[string]any{
		"document_id": documentID,
		"user_id":     userID,
	}
	if t := res.Transition(); t != "" {
		metrics.StatusTransitions.WithLabelValues(string(prev), string(doc.Status)).Inc()
		fields["status_transition"] = t
	}
	telemetry.Info("document.updated", fields)
	return res, nil
}

// SetThumbnail renders r into a PNG thumbnail, stores it and records its key.
func (s *Service) SetThumbnail(ctx context.Context, userID, documentID string, r io.Reader) (string, error) {
	if s.Store == nil {
		return "", errors.New("object store not configured")
	}
	if _, err := s.Repo.GetComposite(ctx, userID, documentID); err != nil {
		return "", err
	}

	data, err := renderThumbnail(r)
	if err != nil {
		return "", err
	}
	key := thumbnailKey(userID, documentID)
	if _, err := s.Store.Put(ctx, key, "image/png", bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	if err := s.Repo.SetThumbnail(ctx, userID, documentID, key, s.now()); err != nil {
		return "", err
	}
	telemetry.Info("document.thumbnail_stored", map[string]any{
		"document_id": documentID,
		"user_id":     userID,
		"bytes":       len(data),
	})
	return key, nil
}

// OpenThumbnail opens the stored thumbnail of the caller's document.
func (s *Service) OpenThumbnail(ctx context.Context, userID, documentID string) (io.ReadCloser, error) {
	doc, err := s.Repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, ErrNotFound
	}
	return s.openThumbnail(ctx, doc)
}

// OpenPublicThumbnail opens the stored thumbnail of a public document.
func (s *Service) OpenPublicThumbnail(ctx context.Context, documentID string) (io.ReadCloser, error) {
	doc, err := s.Repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusPublic {
		return nil, ErrNotFound
	}
	return s.openThumbnail(ctx, doc)
}

func (s *Service) openThumbnail(ctx context.Context, doc Document) (io.ReadCloser, error) {
	if s.Store == nil || doc.Thumbnail == nil || *doc.Thumbnail != thumbnailKey(doc.UserID, doc.DocumentID) {
		return nil, ErrNoThumbnail
	}
	rc, err := s.Store.Open(ctx, *doc.Thumbnail)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNoThumbnail
		}
		return nil, err
	}
	return rc, nil
}

func recordRead(scope string, err error) {
	result := "hit"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "miss"
	default:
		result = "error"
	}
	metrics.DocumentReads.WithLabelValues(scope, result).Inc()
}
