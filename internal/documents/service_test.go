package documents

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/storage/object/local"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

var (
	alice = auth.Identity{ID: "kp_alice", GivenName: "Alice", FamilyName: "Smith", Email: "alice@example.com"}
	bob   = auth.Identity{ID: "kp_bob", GivenName: "Bob", FamilyName: "Jones", Email: "bob@example.com"}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return &Service{
		Repo:  NewMemoryRepo(),
		Store: local.New(t.TempDir()),
		Now:   clock.Now,
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 124, G: 58, B: 237, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Create(context.Background(), alice, CreateDocumentInput{Title: "My Resume"})
	require.NoError(t, err)

	require.NotEmpty(t, doc.DocumentID)
	require.NotZero(t, doc.ID)
	require.Equal(t, "kp_alice", doc.UserID)
	require.Equal(t, "My Resume", doc.Title)
	require.Equal(t, StatusPrivate, doc.Status)
	require.Equal(t, "#7c3aed", doc.ThemeColor)
	require.Equal(t, 1, doc.CurrentPosition)
	require.Equal(t, "Alice Smith", doc.AuthorName)
	require.Equal(t, "alice@example.com", doc.AuthorEmail)
	require.Nil(t, doc.Summary)
	require.Nil(t, doc.Thumbnail)
	require.Equal(t, doc.CreatedAt, doc.UpdatedAt)
}

func TestCreateHonoursOptionalFields(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Create(context.Background(), alice, CreateDocumentInput{
		Title:           "Designer CV",
		Status:          ptr(StatusPublic),
		Summary:         ptr("Ten years of product design"),
		ThemeColor:      ptr("#0ea5e9"),
		CurrentPosition: ptr(3),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPublic, doc.Status)
	require.Equal(t, "#0ea5e9", doc.ThemeColor)
	require.Equal(t, 3, doc.CurrentPosition)
	require.Equal(t, "Ten years of product design", *doc.Summary)
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), alice, CreateDocumentInput{Title: ""})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateAssignsUniqueDocumentIDs(t *testing.T) {
	svc := newTestService(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		doc, err := svc.Create(context.Background(), alice, CreateDocumentInput{Title: "Resume"})
		require.NoError(t, err)
		require.NotEmpty(t, doc.DocumentID)
		require.False(t, seen[doc.DocumentID], "duplicate documentId %s", doc.DocumentID)
		seen[doc.DocumentID] = true
	}
}

func TestListMineExcludesArchivedAndSortsByUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Second"})
	require.NoError(t, err)
	archived, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Old"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, CreateDocumentInput{Title: "Bob's"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice.ID, archived.DocumentID, UpdateDocumentInput{Status: ptr(StatusArchived)})
	require.NoError(t, err)
	// touching first makes it the most recent
	_, err = svc.Update(ctx, alice.ID, first.DocumentID, UpdateDocumentInput{Summary: ptr("updated")})
	require.NoError(t, err)

	docs, err := svc.ListMine(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, first.DocumentID, docs[0].DocumentID)
	require.Equal(t, second.DocumentID, docs[1].DocumentID)

	again, err := svc.ListMine(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, docs, again)

	trash, err := svc.ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	require.Equal(t, archived.DocumentID, trash[0].DocumentID)
}

func TestListMineEmptyIsNonNil(t *testing.T) {
	svc := newTestService(t)
	docs, err := svc.ListMine(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotNil(t, docs)
	require.Len(t, docs, 0)
}

func TestGetIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice.ID, doc.DocumentID)
	require.NoError(t, err)
	require.Equal(t, doc.DocumentID, got.DocumentID)
	require.Nil(t, got.PersonalInfo)
	require.NotNil(t, got.Experiences)
	require.NotNil(t, got.Educations)
	require.NotNil(t, got.Skills)

	_, err = svc.Get(ctx, bob.ID, doc.DocumentID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetPublicRequiresPublicStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.GetPublic(ctx, doc.DocumentID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{Status: ptr(StatusPublic)})
	require.NoError(t, err)
	got, err := svc.GetPublic(ctx, doc.DocumentID)
	require.NoError(t, err)
	require.Equal(t, doc.DocumentID, got.DocumentID)

	_, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{Status: ptr(StatusArchived)})
	require.NoError(t, err)
	_, err = svc.GetPublic(ctx, doc.DocumentID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPublic(ctx, "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUpsertsChildren(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	res, err := svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{
		PersonalInfo: &PersonalInfo{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com"},
		Experience:   []Experience{{Title: "Engineer", CompanyName: "Acme", CurrentlyWorking: true}},
		Education:    []Education{{UniversityName: "MIT", Degree: "BSc"}},
		Skills:       []Skill{{Name: "Go", Rating: 5}, {Name: "SQL", Rating: 4}},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Document.PersonalInfo)
	require.Len(t, res.Document.Experiences, 1)
	require.Len(t, res.Document.Educations, 1)
	require.Len(t, res.Document.Skills, 2)
	require.True(t, res.Document.UpdatedAt.After(doc.UpdatedAt))

	expID := res.Document.Experiences[0].ID
	personalID := res.Document.PersonalInfo.ID
	res, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{
		PersonalInfo: &PersonalInfo{FirstName: "Alicia"},
		Experience:   []Experience{{ID: expID, Title: "Staff Engineer", CompanyName: "Acme"}},
		Skills:       []Skill{{Name: "Kubernetes", Rating: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, personalID, res.Document.PersonalInfo.ID)
	require.Equal(t, "Alicia", res.Document.PersonalInfo.FirstName)
	require.Len(t, res.Document.Experiences, 1)
	require.Equal(t, "Staff Engineer", res.Document.Experiences[0].Title)
	require.Len(t, res.Document.Skills, 3)
}

func TestUpdateRejectsForeignChildID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{
		Title:  ptr("Renamed"),
		Skills: []Skill{{ID: 999, Name: "Go", Rating: 5}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.Get(ctx, alice.ID, doc.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "Mine", got.Title, "failed update must not be partially applied")
}

func TestUpdateReportsTransition(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	res, err := svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{Status: ptr(StatusPublic)})
	require.NoError(t, err)
	require.Equal(t, "private->public", res.Transition())

	res, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{Title: ptr("Same status")})
	require.NoError(t, err)
	require.Empty(t, res.Transition())
}

func TestUpdateForeignDocumentIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, doc.DocumentID, UpdateDocumentInput{Status: ptr(StatusPublic)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestThumbnailRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	key, err := svc.SetThumbnail(ctx, alice.ID, doc.DocumentID, bytes.NewReader(pngBytes(t, 800, 800)))
	require.NoError(t, err)
	require.Equal(t, thumbnailKey(alice.ID, doc.DocumentID), key)

	got, err := svc.Get(ctx, alice.ID, doc.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, got.Thumbnail)
	require.Equal(t, key, *got.Thumbnail)

	rc, err := svc.OpenThumbnail(ctx, alice.ID, doc.DocumentID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 400, cfg.Width)
	require.Equal(t, 400, cfg.Height)

	_, err = svc.OpenThumbnail(ctx, bob.ID, doc.DocumentID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.OpenPublicThumbnail(ctx, doc.DocumentID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, alice.ID, doc.DocumentID, UpdateDocumentInput{Status: ptr(StatusPublic)})
	require.NoError(t, err)
	rc, err = svc.OpenPublicThumbnail(ctx, doc.DocumentID)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.SetThumbnail(ctx, alice.ID, doc.DocumentID, bytes.NewReader([]byte("not an image")))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpenThumbnailWithoutUpload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	doc, err := svc.Create(ctx, alice, CreateDocumentInput{Title: "Mine", Thumbnail: ptr("https://cdn.example.com/x.png")})
	require.NoError(t, err)

	_, err = svc.OpenThumbnail(ctx, alice.ID, doc.DocumentID)
	require.True(t, errors.Is(err, ErrNoThumbnail), "got %v", err)
}
