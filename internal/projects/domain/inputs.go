package domain

// NewProject is a validated create payload.
type NewProject struct {
	Title           string
	Summary         string
	Keywords        []string
	ProponentEntity string
	StartDate       *Date
	EndDate         *Date
	Budget          *float64
	IsPublic        bool
}

// ProjectPatch is a validated update payload; nil fields are left untouched.
type ProjectPatch struct {
	Title           *string
	Summary         *string
	Keywords        []string
	Status          *Status
	ProponentEntity *string
	StartDate       *Date
	EndDate         *Date
	Budget          *float64
	IsPublic        *bool
}

func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Summary == nil && p.Keywords == nil && p.Status == nil &&
		p.ProponentEntity == nil && p.StartDate == nil && p.EndDate == nil &&
		p.Budget == nil && p.IsPublic == nil
}

type NewProduct struct {
	Title         string
	Summary       string
	Description   *string
	ProductURL    *string
	ProductTypeID string
	ProjectID     string
	IsPublic      bool
}

type ProductPatch struct {
	Title         *string
	Summary       *string
	Description   *string
	ProductURL    *string
	ProductTypeID *string
	ProjectID     *string
	IsPublic      *bool
}

func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Summary == nil && p.Description == nil && p.ProductURL == nil &&
		p.ProductTypeID == nil && p.ProjectID == nil && p.IsPublic == nil
}

type NewProductType struct {
	Code        string
	Description string
	Quality     string
	Category    string
}

// AttachTarget identifies the parent entity of an upload.
type AttachTarget struct {
	EntityType EntityType
	EntityID   string
}

// FileUpload is one file in an upload request.
type FileUpload struct {
	FileName string
	MimeType string
	Data     []byte
}

// AttachOutcome is the settled result of a single file in a multi-file upload.
type AttachOutcome struct {
	FileName   string      `json:"file_name"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Err        error       `json:"-"`
	Error      string      `json:"error,omitempty"`
}

func (o AttachOutcome) OK() bool {
	return o.Err == nil
}

// PublicQuery is a normalised request for the public listing.
type PublicQuery struct {
	Limit  int
	Offset int
	Search string
}
