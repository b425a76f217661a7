package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryRecord struct {
	doc         Document
	personal    *PersonalInfo
	experiences []Experience
	educations  []Education
	skills      []Skill
}

func (r memoryRecord) clone() memoryRecord {
	out := memoryRecord{
		doc:         r.doc,
		experiences: append([]Experience(nil), r.experiences...),
		educations:  append([]Education(nil), r.educations...),
		skills:      append([]Skill(nil), r.skills...),
	}
	if r.personal != nil {
		p := *r.personal
		out.personal = &p
	}
	return out
}

func (r memoryRecord) composite() Composite {
	c := newComposite(r.doc)
	if r.personal != nil {
		p := *r.personal
		c.PersonalInfo = &p
	}
	c.Experiences = append(c.Experiences, r.experiences...)
	c.Educations = append(c.Educations, r.educations...)
	c.Skills = append(c.Skills, r.skills...)
	return c
}

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu      sync.RWMutex
	data    map[string]memoryRecord // documentId -> record
	nextDoc int64
	nextRow int64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]memoryRecord),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[doc.DocumentID]; exists {
		return Document{}, fmt.Errorf("document %s already exists", doc.DocumentID)
	}
	r.nextDoc++
	doc.ID = r.nextDoc
	r.data[doc.DocumentID] = memoryRecord{doc: doc}
	return doc, nil
}

// ListByOwner returns the owner's documents, newest update first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, userID string, archived bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Document{}
	for _, rec := range r.data {
		if rec.doc.UserID != userID {
			continue
		}
		if (rec.doc.Status == StatusArchived) != archived {
			continue
		}
		out = append(out, rec.doc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Get returns a document by documentId.
func (r *MemoryRepo) Get(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return rec.doc, nil
}

// GetComposite returns the owner's document with children.
func (r *MemoryRepo) GetComposite(ctx context.Context, userID, documentID string) (Composite, error) {
	if err := ctx.Err(); err != nil {
		return Composite{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[documentID]
	if !ok || rec.doc.UserID != userID {
		return Composite{}, ErrNotFound
	}
	return rec.composite(), nil
}

// GetPublicComposite returns a public document with children.
func (r *MemoryRepo) GetPublicComposite(ctx context.Context, documentID string) (Composite, error) {
	if err := ctx.Err(); err != nil {
		return Composite{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[documentID]
	if !ok || rec.doc.Status != StatusPublic {
		return Composite{}, ErrNotFound
	}
	return rec.composite(), nil
}

// Update applies in to a copy of the record and swaps it in on success.
func (r *MemoryRepo) Update(ctx context.Context, userID, documentID string, in UpdateDocumentInput, now time.Time) (Status, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.data[documentID]
	if !ok || current.doc.UserID != userID {
		return "", ErrNotFound
	}
	prev := current.doc.Status
	rec := current.clone()
	applyUpdate(&rec.doc, in)
	rec.doc.UpdatedAt = now

	if in.PersonalInfo != nil {
		p := *in.PersonalInfo
		p.DocID = rec.doc.ID
		if rec.personal != nil {
			p.ID = rec.personal.ID
		} else {
			p.ID = r.allocRow()
		}
		rec.personal = &p
	}
	for _, e := range in.Experience {
		e.DocID = rec.doc.ID
		if e.ID == 0 {
			e.ID = r.allocRow()
			rec.experiences = append(rec.experiences, e)
			continue
		}
		idx := indexOf(len(rec.experiences), func(i int) bool { return rec.experiences[i].ID == e.ID })
		if idx < 0 {
			return "", fmt.Errorf("%w: experience %d does not belong to document", ErrInvalidInput, e.ID)
		}
		rec.experiences[idx] = e
	}
	for _, e := range in.Education {
		e.DocID = rec.doc.ID
		if e.ID == 0 {
			e.ID = r.allocRow()
			rec.educations = append(rec.educations, e)
			continue
		}
		idx := indexOf(len(rec.educations), func(i int) bool { return rec.educations[i].ID == e.ID })
		if idx < 0 {
			return "", fmt.Errorf("%w: education %d does not belong to document", ErrInvalidInput, e.ID)
		}
		rec.educations[idx] = e
	}
	for _, s := range in.Skills {
		s.DocID = rec.doc.ID
		if s.ID == 0 {
			s.ID = r.allocRow()
			rec.skills = append(rec.skills, s)
			continue
		}
		idx := indexOf(len(rec.skills), func(i int) bool { return rec.skills[i].ID == s.ID })
		if idx < 0 {
			return "", fmt.Errorf("%w: skill %d does not belong to document", ErrInvalidInput, s.ID)
		}
		rec.skills[idx] = s
	}

	r.data[documentID] = rec
	return prev, nil
}

// SetThumbnail records the thumbnail key on the owner's document.
func (r *MemoryRepo) SetThumbnail(ctx context.Context, userID, documentID, key string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[documentID]
	if !ok || rec.doc.UserID != userID {
		return ErrNotFound
	}
	k := key
	rec.doc.Thumbnail = &k
	rec.doc.UpdatedAt = now
	r.data[documentID] = rec
	return nil
}

// allocRow hands out child row ids. Callers hold r.mu.
func (r *MemoryRepo) allocRow() int64 {
	r.nextRow++
	return r.nextRow
}

func indexOf(n int, match func(int) bool) int {
	for i := 0; i < n; i++ {
		if match(i) {
			return i
		}
	}
	return -1
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
