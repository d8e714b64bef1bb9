package validation

import "github.com/ctein-nexus/nexus-backend/internal/projects/domain"

type CreateProjectRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Summary         string   `json:"summary" validate:"required,max=5000"`
	Keywords        []string `json:"keywords" validate:"required,min=1,max=20,dive,required,max=100"`
	ProponentEntity string   `json:"proponent_entity" validate:"required,max=255"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	IsPublic        *bool    `json:"is_public"`
}

type UpdateProjectRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Summary         *string  `json:"summary" validate:"omitempty,min=1,max=5000"`
	Keywords        []string `json:"keywords" validate:"omitempty,max=20,dive,required,max=100"`
	Status          *string  `json:"status" validate:"omitempty,oneof=PROPOSED IN_PROGRESS COMPLETED CANCELLED"`
	ProponentEntity *string  `json:"proponent_entity" validate:"omitempty,min=1,max=255"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	IsPublic        *bool    `json:"is_public"`
}

// CreateProject validates a create payload. Status is not accepted here; new
// projects always start as PROPOSED.
func CreateProject(req CreateProjectRequest) (domain.NewProject, error) {
	req.Title = trim(req.Title)
	req.Summary = trim(req.Summary)
	req.ProponentEntity = trim(req.ProponentEntity)
	req.Keywords = trimAll(req.Keywords)

	ve := &domain.ValidationError{}
	check(ve, req)

	start := parseDate(ve, "start_date", req.StartDate)
	end := parseDate(ve, "end_date", req.EndDate)
	checkDateOrder(ve, start, end)

	if err := ve.OrNil(); err != nil {
		return domain.NewProject{}, err
	}

	out := domain.NewProject{
		Title:           req.Title,
		Summary:         req.Summary,
		Keywords:        req.Keywords,
		ProponentEntity: req.ProponentEntity,
		StartDate:       start,
		EndDate:         end,
		Budget:          req.Budget,
	}
	if req.IsPublic != nil {
		out.IsPublic = *req.IsPublic
	}
	return out, nil
}

// UpdateProject validates a partial update. Only present fields are checked.
func UpdateProject(req UpdateProjectRequest) (domain.ProjectPatch, error) {
	req.Title = trimPtr(req.Title)
	req.Summary = trimPtr(req.Summary)
	req.ProponentEntity = trimPtr(req.ProponentEntity)
	req.Keywords = trimAll(req.Keywords)

	ve := &domain.ValidationError{}
	check(ve, req)

	if req.Keywords != nil && len(req.Keywords) == 0 {
		ve.Add("keywords", "must contain at least 1 item(s)")
	}

	start := parseDate(ve, "start_date", req.StartDate)
	end := parseDate(ve, "end_date", req.EndDate)
	checkDateOrder(ve, start, end)

	if err := ve.OrNil(); err != nil {
		return domain.ProjectPatch{}, err
	}

	patch := domain.ProjectPatch{
		Title:           req.Title,
		Summary:         req.Summary,
		Keywords:        req.Keywords,
		ProponentEntity: req.ProponentEntity,
		StartDate:       start,
		EndDate:         end,
		Budget:          req.Budget,
		IsPublic:        req.IsPublic,
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		patch.Status = &s
	}
	return patch, nil
}
