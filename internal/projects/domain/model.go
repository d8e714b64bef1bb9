package domain

import (
	"strings"
	"time"
)

// Status is the fixed lifecycle enumeration of a research project.
type Status string

const (
	StatusProposed   Status = "PROPOSED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProposed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// EntityType names the parent kind an attachment hangs off.
type EntityType string

const (
	EntityProject EntityType = "project"
	EntityProduct EntityType = "product"
)

func (e EntityType) Valid() bool {
	return e == EntityProject || e == EntityProduct
}

// Project represents a research project owned by a single user.
// It is intentionally storage-agnostic and used across repository and HTTP layers.
type Project struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Summary         string       `json:"summary"`
	Keywords        []string     `json:"keywords"`
	Status          Status       `json:"status"`
	ProponentEntity string       `json:"proponent_entity"`
	StartDate       *Date        `json:"start_date,omitempty"`
	EndDate         *Date        `json:"end_date,omitempty"`
	Budget          *float64     `json:"budget,omitempty"`
	IsPublic        bool         `json:"is_public"`
	OwnerID         string       `json:"owner_id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Counts          Counts       `json:"counts"`
	Products        []Product    `json:"products"`
	Attachments     []Attachment `json:"attachments"`
}

// Counts holds the number of related rows, public and private alike.
type Counts struct {
	Products    int `json:"products"`
	Attachments int `json:"attachments"`
}

// ProjectRef is the slim parent summary embedded in product responses.
type ProjectRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsPublic bool   `json:"is_public"`
}

type Product struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Description   *string      `json:"description,omitempty"`
	ProductURL    *string      `json:"product_url,omitempty"`
	ProductTypeID string       `json:"product_type_id"`
	ProjectID     string       `json:"project_id"`
	IsPublic      bool         `json:"is_public"`
	OwnerID       string       `json:"owner_id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	ProductType   *ProductType `json:"product_type,omitempty"`
	Project       *ProjectRef  `json:"project,omitempty"`
	Attachments   []Attachment `json:"attachments"`
}

// ProductType is read-mostly reference data describing the kind of a product.
type ProductType struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Quality     string `json:"quality"`
	Category    string `json:"category"`
}

// Attachment is a stored file belonging to exactly one project or product.
// StorageKey is the blob store key and never leaves the server.
type Attachment struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	StorageKey string    `json:"-"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	ProjectID  *string   `json:"project_id,omitempty"`
	ProductID  *string   `json:"product_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicProject is the projection served by the unauthenticated listing.
type PublicProject struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	Keywords        []string        `json:"keywords"`
	Status          Status          `json:"status"`
	ProponentEntity string          `json:"proponent_entity"`
	StartDate       *Date           `json:"start_date,omitempty"`
	EndDate         *Date           `json:"end_date,omitempty"`
	Budget          *float64        `json:"budget,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatorName     *string         `json:"creator_name,omitempty"`
	Counts          Counts          `json:"counts"`
	Products        []PublicProduct `json:"products"`
}

type PublicProduct struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Description *string      `json:"description,omitempty"`
	ProductURL  *string      `json:"product_url,omitempty"`
	ProductType *ProductType `json:"product_type,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Pagination describes a page of the public listing.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type PublicPage struct {
	Projects   []PublicProject `json:"projects"`
	Pagination Pagination      `json:"pagination"`
}

// Date is a calendar date without time of day, encoded as "2006-01-02".
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = t
	return nil
}

// ParseDate accepts a bare calendar date or a full RFC 3339 timestamp and keeps the date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}
