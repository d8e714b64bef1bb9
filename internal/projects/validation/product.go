package validation

import "github.com/ctein-nexus/nexus-backend/internal/projects/domain"

type CreateProductRequest struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Summary       string  `json:"summary" validate:"required,max=5000"`
	Description   *string `json:"description" validate:"omitempty,max=10000"`
	ProductURL    *string `json:"product_url" validate:"omitempty,url"`
	ProductTypeID string  `json:"product_type_id" validate:"required,uuid"`
	ProjectID     string  `json:"project_id" validate:"required,uuid"`
	IsPublic      *bool   `json:"is_public"`
}

type UpdateProductRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Summary       *string `json:"summary" validate:"omitempty,min=1,max=5000"`
	Description   *string `json:"description" validate:"omitempty,max=10000"`
	ProductURL    *string `json:"product_url" validate:"omitempty,url"`
	ProductTypeID *string `json:"product_type_id" validate:"omitempty,uuid"`
	ProjectID     *string `json:"project_id" validate:"omitempty,uuid"`
	IsPublic      *bool   `json:"is_public"`
}

type CreateProductTypeRequest struct {
	Code        string `json:"code" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
	Quality     string `json:"quality" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=255"`
}

// CreateProduct validates a create payload. A blank product_url counts as absent.
func CreateProduct(req CreateProductRequest) (domain.NewProduct, error) {
	req.Title = trim(req.Title)
	req.Summary = trim(req.Summary)
	req.Description = optionalText(req.Description)
	req.ProductURL = optionalText(req.ProductURL)
	req.ProductTypeID = trim(req.ProductTypeID)
	req.ProjectID = trim(req.ProjectID)

	ve := &domain.ValidationError{}
	check(ve, req)
	if err := ve.OrNil(); err != nil {
		return domain.NewProduct{}, err
	}

	out := domain.NewProduct{
		Title:         req.Title,
		Summary:       req.Summary,
		Description:   req.Description,
		ProductURL:    req.ProductURL,
		ProductTypeID: req.ProductTypeID,
		ProjectID:     req.ProjectID,
	}
	if req.IsPublic != nil {
		out.IsPublic = *req.IsPublic
	}
	return out, nil
}

func UpdateProduct(req UpdateProductRequest) (domain.ProductPatch, error) {
	req.Title = trimPtr(req.Title)
	req.Summary = trimPtr(req.Summary)
	req.Description = trimPtr(req.Description)
	req.ProductURL = trimPtr(req.ProductURL)
	req.ProductTypeID = trimPtr(req.ProductTypeID)
	req.ProjectID = trimPtr(req.ProjectID)

	// An explicit "" clears the url; only non-blank values must parse.
	clearURL := req.ProductURL != nil && *req.ProductURL == ""
	if clearURL {
		req.ProductURL = nil
	}

	ve := &domain.ValidationError{}
	check(ve, req)
	if err := ve.OrNil(); err != nil {
		return domain.ProductPatch{}, err
	}

	patch := domain.ProductPatch{
		Title:         req.Title,
		Summary:       req.Summary,
		Description:   req.Description,
		ProductURL:    req.ProductURL,
		ProductTypeID: req.ProductTypeID,
		ProjectID:     req.ProjectID,
		IsPublic:      req.IsPublic,
	}
	if clearURL {
		empty := ""
		patch.ProductURL = &empty
	}
	return patch, nil
}

func CreateProductType(req CreateProductTypeRequest) (domain.NewProductType, error) {
	req.Code = trim(req.Code)
	req.Description = trim(req.Description)
	req.Quality = trim(req.Quality)
	req.Category = trim(req.Category)

	ve := &domain.ValidationError{}
	check(ve, req)
	if err := ve.OrNil(); err != nil {
		return domain.NewProductType{}, err
	}

	return domain.NewProductType{
		Code:        req.Code,
		Description: req.Description,
		Quality:     req.Quality,
		Category:    req.Category,
	}, nil
}
