package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/shared/storage/db"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, document_id, user_id, title, summary, theme_color, thumbnail, current_position, status, author_name, author_email, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Create inserts a new document and returns it with the serial id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO document (
    document_id,
    user_id,
    title,
    summary,
    theme_color,
    thumbnail,
    current_position,
    status,
    author_name,
    author_email,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.DocumentID,
		doc.UserID,
		doc.Title,
		nullable(doc.Summary),
		doc.ThemeColor,
		nullable(doc.Thumbnail),
		doc.CurrentPosition,
		string(doc.Status),
		doc.AuthorName,
		doc.AuthorEmail,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists the owner's documents ordered by last update.
func (r *PGRepo) ListByOwner(ctx context.Context, userID string, archived bool) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM document
WHERE user_id = $1 AND status <> 'archived'
ORDER BY updated_at DESC, id DESC`
	if archived {
		query = `
SELECT ` + documentColumns + `
FROM document
WHERE user_id = $1 AND status = 'archived'
ORDER BY updated_at DESC, id DESC`
	}

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Get fetches a document by documentId.
func (r *PGRepo) Get(ctx context.Context, documentID string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM document
WHERE document_id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// GetComposite fetches the owner's document and its children.
func (r *PGRepo) GetComposite(ctx context.Context, userID, documentID string) (Composite, error) {
	query := `
SELECT ` + documentColumns + `
FROM document
WHERE document_id = $1 AND user_id = $2
LIMIT 1`
	return r.loadComposite(ctx, query, documentID, userID)
}

// GetPublicComposite fetches a public document and its children.
func (r *PGRepo) GetPublicComposite(ctx context.Context, documentID string) (Composite, error) {
	query := `
SELECT ` + documentColumns + `
FROM document
WHERE document_id = $1 AND status = 'public'
LIMIT 1`
	return r.loadComposite(ctx, query, documentID)
}

func (r *PGRepo) loadComposite(ctx context.Context, query string, args ...any) (Composite, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Composite{}, ErrNotFound
		}
		return Composite{}, err
	}
	out := newComposite(doc)
	if err := loadChildren(ctx, r.DB, &out); err != nil {
		return Composite{}, err
	}
	return out, nil
}

// Update applies in inside a single transaction.
func (r *PGRepo) Update(ctx context.Context, userID, documentID string, in UpdateDocumentInput, now time.Time) (Status, error) {
	var prev Status
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `
SELECT ` + documentColumns + `
FROM document
WHERE document_id = $1 AND user_id = $2
FOR UPDATE`
		doc, err := scanDocument(tx.QueryRowContext(ctx, query, documentID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		prev = doc.Status
		applyUpdate(&doc, in)
		doc.UpdatedAt = now

		const update = `
UPDATE document
SET title = $1, summary = $2, theme_color = $3, thumbnail = $4, current_position = $5, status = $6, updated_at = $7
WHERE id = $8`
		if _, err := tx.ExecContext(ctx, update,
			doc.Title,
			nullable(doc.Summary),
			doc.ThemeColor,
			nullable(doc.Thumbnail),
			doc.CurrentPosition,
			string(doc.Status),
			doc.UpdatedAt,
			doc.ID,
		); err != nil {
			return err
		}

		if in.PersonalInfo != nil {
			if err := upsertPersonalInfo(ctx, tx, doc.ID, *in.PersonalInfo); err != nil {
				return err
			}
		}
		for _, e := range in.Experience {
			if err := saveExperience(ctx, tx, doc.ID, e); err != nil {
				return err
			}
		}
		for _, e := range in.Education {
			if err := saveEducation(ctx, tx, doc.ID, e); err != nil {
				return err
			}
		}
		for _, s := range in.Skills {
			if err := saveSkill(ctx, tx, doc.ID, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}

// SetThumbnail stores the thumbnail key on the owner's document.
func (r *PGRepo) SetThumbnail(ctx context.Context, userID, documentID, key string, now time.Time) error {
	const query = `
UPDATE document
SET thumbnail = $1, updated_at = $2
WHERE document_id = $3 AND user_id = $4`
	res, err := r.DB.ExecContext(ctx, query, key, now, documentID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func upsertPersonalInfo(ctx context.Context, tx *sql.Tx, docID int64, p PersonalInfo) error {
	const query = `
INSERT INTO personal_info (doc_id, first_name, last_name, job_title, address, phone, email)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (doc_id) DO UPDATE
SET first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    job_title = EXCLUDED.job_title,
    address = EXCLUDED.address,
    phone = EXCLUDED.phone,
    email = EXCLUDED.email`
	_, err := tx.ExecContext(ctx, query, docID, p.FirstName, p.LastName, p.JobTitle, p.Address, p.Phone, p.Email)
	return err
}

func saveExperience(ctx context.Context, tx *sql.Tx, docID int64, e Experience) error {
	if e.ID == 0 {
		const insert = `
INSERT INTO experience (doc_id, title, company_name, city, state, start_date, end_date, currently_working, work_summary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err := tx.ExecContext(ctx, insert, docID, e.Title, e.CompanyName, e.City, e.State, e.StartDate, e.EndDate, e.CurrentlyWorking, e.WorkSummary)
		return err
	}
	const update = `
UPDATE experience
SET title = $1, company_name = $2, city = $3, state = $4, start_date = $5, end_date = $6, currently_working = $7, work_summary = $8
WHERE id = $9 AND doc_id = $10`
	res, err := tx.ExecContext(ctx, update, e.Title, e.CompanyName, e.City, e.State, e.StartDate, e.EndDate, e.CurrentlyWorking, e.WorkSummary, e.ID, docID)
	return requireRow(res, err, "experience", e.ID)
}

func saveEducation(ctx context.Context, tx *sql.Tx, docID int64, e Education) error {
	if e.ID == 0 {
		const insert = `
INSERT INTO education (doc_id, university_name, degree, major, description, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := tx.ExecContext(ctx, insert, docID, e.UniversityName, e.Degree, e.Major, e.Description, e.StartDate, e.EndDate)
		return err
	}
	const update = `
UPDATE education
SET university_name = $1, degree = $2, major = $3, description = $4, start_date = $5, end_date = $6
WHERE id = $7 AND doc_id = $8`
	res, err := tx.ExecContext(ctx, update, e.UniversityName, e.Degree, e.Major, e.Description, e.StartDate, e.EndDate, e.ID, docID)
	return requireRow(res, err, "education", e.ID)
}

func saveSkill(ctx context.Context, tx *sql.Tx, docID int64, s Skill) error {
	if s.ID == 0 {
		const insert = `
INSERT INTO skills (doc_id, name, rating)
VALUES ($1, $2, $3)`
		_, err := tx.ExecContext(ctx, insert, docID, s.Name, s.Rating)
		return err
	}
	const update = `
UPDATE skills
SET name = $1, rating = $2
WHERE id = $3 AND doc_id = $4`
	res, err := tx.ExecContext(ctx, update, s.Name, s.Rating, s.ID, docID)
	return requireRow(res, err, "skill", s.ID)
}

func requireRow(res sql.Result, err error, kind string, id int64) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s %d does not belong to document", ErrInvalidInput, kind, id)
	}
	return nil
}

func loadChildren(ctx context.Context, q queryer, c *Composite) error {
	var p PersonalInfo
	var first, last, job, addr, phone, email sql.NullString
	err := q.QueryRowContext(ctx, `
SELECT id, doc_id, first_name, last_name, job_title, address, phone, email
FROM personal_info
WHERE doc_id = $1`, c.ID).Scan(&p.ID, &p.DocID, &first, &last, &job, &addr, &phone, &email)
	switch {
	case err == nil:
		p.FirstName, p.LastName, p.JobTitle = first.String, last.String, job.String
		p.Address, p.Phone, p.Email = addr.String, phone.String, email.String
		c.PersonalInfo = &p
	case errors.Is(err, sql.ErrNoRows):
	default:
		return err
	}

	rows, err := q.QueryContext(ctx, `
SELECT id, doc_id, title, company_name, city, state, start_date, end_date, currently_working, work_summary
FROM experience
WHERE doc_id = $1
ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var e Experience
		var title, company, city, state, start, end, summary sql.NullString
		if err := rows.Scan(&e.ID, &e.DocID, &title, &company, &city, &state, &start, &end, &e.CurrentlyWorking, &summary); err != nil {
			rows.Close()
			return err
		}
		e.Title, e.CompanyName, e.City, e.State = title.String, company.String, city.String, state.String
		e.StartDate, e.EndDate, e.WorkSummary = start.String, end.String, summary.String
		c.Experiences = append(c.Experiences, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx, `
SELECT id, doc_id, university_name, degree, major, description, start_date, end_date
FROM education
WHERE doc_id = $1
ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var e Education
		var uni, degree, major, desc, start, end sql.NullString
		if err := rows.Scan(&e.ID, &e.DocID, &uni, &degree, &major, &desc, &start, &end); err != nil {
			rows.Close()
			return err
		}
		e.UniversityName, e.Degree, e.Major = uni.String, degree.String, major.String
		e.Description, e.StartDate, e.EndDate = desc.String, start.String, end.String
		c.Educations = append(c.Educations, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx, `
SELECT id, doc_id, name, rating
FROM skills
WHERE doc_id = $1
ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s Skill
		var name sql.NullString
		if err := rows.Scan(&s.ID, &s.DocID, &name, &s.Rating); err != nil {
			return err
		}
		s.Name = name.String
		c.Skills = append(c.Skills, s)
	}
	return rows.Err()
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var summary, thumbnail sql.NullString
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.DocumentID,
		&doc.UserID,
		&doc.Title,
		&summary,
		&doc.ThemeColor,
		&thumbnail,
		&doc.CurrentPosition,
		&status,
		&doc.AuthorName,
		&doc.AuthorEmail,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Status = Status(status)
	if summary.Valid {
		s := summary.String
		doc.Summary = &s
	}
	if thumbnail.Valid {
		t := thumbnail.String
		doc.Thumbnail = &t
	}
	return doc, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ DocumentsRepo = (*PGRepo)(nil)
