package documents

import "time"

// Document is a resume document owned by a single user.
type Document struct {
	ID              int64     `json:"id"`
	DocumentID      string    `json:"documentId"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Summary         *string   `json:"summary"`
	ThemeColor      string    `json:"themeColor"`
	Thumbnail       *string   `json:"thumbnail"`
	CurrentPosition int       `json:"currentPosition"`
	Status          Status    `json:"status"`
	AuthorName      string    `json:"authorName"`
	AuthorEmail     string    `json:"authorEmail"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PersonalInfo holds the contact block. A document has at most one.
type PersonalInfo struct {
	ID        int64  `json:"id"`
	DocID     int64  `json:"docId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Experience is one work history entry.
type Experience struct {
	ID               int64  `json:"id"`
	DocID            int64  `json:"docId"`
	Title            string `json:"title"`
	CompanyName      string `json:"companyName"`
	City             string `json:"city"`
	State            string `json:"state"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	CurrentlyWorking bool   `json:"currentlyWorking"`
	WorkSummary      string `json:"workSummary"`
}

// Education is one education entry.
type Education struct {
	ID             int64  `json:"id"`
	DocID          int64  `json:"docId"`
	UniversityName string `json:"universityName"`
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	Description    string `json:"description"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

// Skill is a named skill with a 0..5 rating.
type Skill struct {
	ID     int64  `json:"id"`
	DocID  int64  `json:"docId"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Composite is a document with its child collections loaded.
type Composite struct {
	Document
	PersonalInfo *PersonalInfo `json:"personalInfo"`
	Experiences  []Experience  `json:"experiences"`
	Educations   []Education   `json:"educations"`
	Skills       []Skill       `json:"skills"`
}

func newComposite(doc Document) Composite {
	return Composite{
		Document:    doc,
		Experiences: []Experience{},
		Educations:  []Education{},
		Skills:      []Skill{},
	}
}

const (
	defaultThemeColor      = "#7c3aed"
	defaultCurrentPosition = 1
)
