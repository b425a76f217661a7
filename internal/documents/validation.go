package documents

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen      = 255
	maxThemeColorLen = 255
	maxSkillRating   = 5
)

// CreateDocumentInput is the only client-settable payload on create.
type CreateDocumentInput struct {
	Title           string  `json:"title"`
	Status          *Status `json:"status"`
	Summary         *string `json:"summary"`
	ThemeColor      *string `json:"themeColor"`
	Thumbnail       *string `json:"thumbnail"`
	CurrentPosition *int    `json:"currentPosition"`
}

// Validate trims the title and checks every present field.
func (in *CreateDocumentInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return validateFields(in.Title, in.Status, in.ThemeColor, in.CurrentPosition)
}

// UpdateDocumentInput carries optional document fields and child payloads.
// Child entries with a non-zero id update the matching row; the rest are inserted.
type UpdateDocumentInput struct {
	Title           *string       `json:"title"`
	Status          *Status       `json:"status"`
	Summary         *string       `json:"summary"`
	ThemeColor      *string       `json:"themeColor"`
	Thumbnail       *string       `json:"thumbnail"`
	CurrentPosition *int          `json:"currentPosition"`
	PersonalInfo    *PersonalInfo `json:"personalInfo"`
	Experience      []Experience  `json:"experience"`
	Education       []Education   `json:"education"`
	Skills          []Skill       `json:"skills"`
}

// Validate checks present fields. A present title must be non-empty.
func (in *UpdateDocumentInput) Validate() error {
	title := ""
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		in.Title = &trimmed
		title = trimmed
	}
	if err := validateFields(title, in.Status, in.ThemeColor, in.CurrentPosition); err != nil {
		return err
	}
	for i, s := range in.Skills {
		if s.Rating < 0 || s.Rating > maxSkillRating {
			return fmt.Errorf("%w: skills[%d].rating must be between 0 and %d", ErrInvalidInput, i, maxSkillRating)
		}
		if s.ID < 0 {
			return fmt.Errorf("%w: skills[%d].id must not be negative", ErrInvalidInput, i)
		}
	}
	for i, e := range in.Experience {
		if e.ID < 0 {
			return fmt.Errorf("%w: experience[%d].id must not be negative", ErrInvalidInput, i)
		}
	}
	for i, e := range in.Education {
		if e.ID < 0 {
			return fmt.Errorf("%w: education[%d].id must not be negative", ErrInvalidInput, i)
		}
	}
	return nil
}

// HasChildren reports whether the update touches any child collection.
func (in UpdateDocumentInput) HasChildren() bool {
	return in.PersonalInfo != nil || len(in.Experience) > 0 || len(in.Education) > 0 || len(in.Skills) > 0
}

func validateFields(title string, status *Status, themeColor *string, position *int) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLen)
	}
	if status != nil && !status.Valid() {
		return fmt.Errorf("%w: status must be one of private, public, archived", ErrInvalidInput)
	}
	if themeColor != nil && utf8.RuneCountInString(*themeColor) > maxThemeColorLen {
		return fmt.Errorf("%w: themeColor must be at most %d characters", ErrInvalidInput, maxThemeColorLen)
	}
	if position != nil && *position < 1 {
		return fmt.Errorf("%w: currentPosition must be at least 1", ErrInvalidInput)
	}
	return nil
}

// applyUpdate copies present fields of in onto doc.
func applyUpdate(doc *Document, in UpdateDocumentInput) {
	if in.Title != nil {
		doc.Title = *in.Title
	}
	if in.Status != nil {
		doc.Status = *in.Status
	}
	if in.Summary != nil {
		doc.Summary = in.Summary
	}
	if in.ThemeColor != nil {
		doc.ThemeColor = *in.ThemeColor
	}
	if in.Thumbnail != nil {
		doc.Thumbnail = in.Thumbnail
	}
	if in.CurrentPosition != nil {
		doc.CurrentPosition = *in.CurrentPosition
	}
}
