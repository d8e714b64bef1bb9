package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

const projectID = "0f5a8c3e-2d71-4e9b-a6c4-5b3d2e1f0a98"

type stubProjects struct {
	owner string
	err   error
}

func (s *stubProjects) Create(_ context.Context, ownerID string, req validation.CreateProjectRequest) (*domain.Project, error) {
	in, err := validation.CreateProject(req)
	if err != nil {
		return nil, err
	}
	return &domain.Project{ID: projectID, Title: in.Title, Status: domain.StatusProposed, OwnerID: ownerID,
		Keywords: in.Keywords, Products: []domain.Product{}, Attachments: []domain.Attachment{}}, nil
}

func (s *stubProjects) Get(_ context.Context, id, ownerID string) (*domain.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id != projectID || ownerID != s.owner {
		return nil, domain.ErrNotFound
	}
	return &domain.Project{ID: id, OwnerID: ownerID}, nil
}

func (s *stubProjects) List(_ context.Context, ownerID string) ([]domain.Project, error) {
	return []domain.Project{{ID: projectID, OwnerID: ownerID}}, nil
}

func (s *stubProjects) Update(ctx context.Context, id, ownerID string, req validation.UpdateProjectRequest) (*domain.Project, error) {
	if _, err := validation.UpdateProject(req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, ownerID)
}

func (s *stubProjects) Delete(ctx context.Context, id, ownerID string) error {
	_, err := s.Get(ctx, id, ownerID)
	return err
}

type stubProducts struct{ lastProjectFilter string }

func (s *stubProducts) Create(context.Context, string, validation.CreateProductRequest) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (s *stubProducts) Get(context.Context, string, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (s *stubProducts) List(_ context.Context, _ string, projectID string) ([]domain.Product, error) {
	s.lastProjectFilter = projectID
	return []domain.Product{}, nil
}
func (s *stubProducts) Update(context.Context, string, string, validation.UpdateProductRequest) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (s *stubProducts) Delete(context.Context, string, string) error { return domain.ErrNotFound }

type stubTypes struct{ created int }

func (s *stubTypes) List(context.Context) ([]domain.ProductType, error) {
	return []domain.ProductType{{ID: "t1", Code: "LIBRO"}}, nil
}
func (s *stubTypes) Create(_ context.Context, req validation.CreateProductTypeRequest) (*domain.ProductType, error) {
	in, err := validation.CreateProductType(req)
	if err != nil {
		return nil, err
	}
	s.created++
	return &domain.ProductType{ID: "t2", Code: in.Code}, nil
}

type stubAttachments struct {
	files    []domain.FileUpload
	detached string
}

func (s *stubAttachments) Attach(_ context.Context, _ string, t domain.AttachTarget, f domain.FileUpload) (*domain.Attachment, error) {
	s.files = append(s.files, f)
	if f.FileName == "bad.pdf" {
		return nil, &domain.UpstreamError{Op: "upload blob", Err: errors.New("bucket gone")}
	}
	id := t.EntityID
	return &domain.Attachment{ID: "a1", FileName: f.FileName, FileSize: int64(len(f.Data)), ProjectID: &id}, nil
}

func (s *stubAttachments) AttachMany(ctx context.Context, owner string, t domain.AttachTarget, files []domain.FileUpload) []domain.AttachOutcome {
	out := make([]domain.AttachOutcome, len(files))
	for i, f := range files {
		a, err := s.Attach(ctx, owner, t, f)
		out[i] = domain.AttachOutcome{FileName: f.FileName, Attachment: a, Err: err}
		if err != nil {
			out[i].Error = "internal error"
		}
	}
	return out
}

func (s *stubAttachments) Detach(_ context.Context, _ string, id string) error {
	s.detached = id
	return nil
}

type stubPublic struct{ last domain.PublicQuery }

func (s *stubPublic) List(_ context.Context, q domain.PublicQuery) (*domain.PublicPage, error) {
	s.last = q
	return &domain.PublicPage{
		Projects:   []domain.PublicProject{},
		Pagination: domain.Pagination{Total: 0, Limit: q.Limit, Offset: q.Offset},
	}, nil
}

type fixture struct {
	router      *gin.Engine
	projects    *stubProjects
	products    *stubProducts
	types       *stubTypes
	attachments *stubAttachments
	public      *stubPublic
}

func newFixture(uid string, admin bool) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		projects:    &stubProjects{owner: "uid-1"},
		products:    &stubProducts{},
		types:       &stubTypes{},
		attachments: &stubAttachments{},
		public:      &stubPublic{},
	}
	h := New(Deps{
		Projects: f.projects, Products: f.products, ProductTypes: f.types,
		Attachments: f.attachments, Public: f.public, MaxUploadBytes: 1 << 20,
	})

	identity := func(c *gin.Context) {
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			return
		}
		auth.SetIdentity(c, auth.Identity{UID: uid, Admin: admin})
		c.Next()
	}
	requireAdmin := func(c *gin.Context) {
		if id, _ := auth.FromContext(c); !id.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin access required"})
			return
		}
		c.Next()
	}

	f.router = gin.New()
	h.Register(f.router.Group("/api/v1"), Guards{
		Authenticated: []gin.HandlerFunc{identity},
		Admin:         []gin.HandlerFunc{requireAdmin},
	})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestProjects_AuthRequired(t *testing.T) {
	f := newFixture("", false)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/projects", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/v1/upload", "").Code)
}

func TestProjects_CreateAndList(t *testing.T) {
	f := newFixture("uid-1", false)

	rr := f.do(http.MethodPost, "/api/v1/projects", `{"title":"A","summary":"B","keywords":["x"],"proponent_entity":"E"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decode(t, rr)
	project := body["project"].(map[string]any)
	assert.Equal(t, "PROPOSED", project["status"])
	assert.Equal(t, false, project["is_public"])

	rr = f.do(http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decode(t, rr)["total"])
}

func TestProjects_ValidationDetails(t *testing.T) {
	f := newFixture("uid-1", false)

	rr := f.do(http.MethodPost, "/api/v1/projects", `{"title":"","keywords":[]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "validation failed", body["error"])
	assert.NotEmpty(t, body["details"])

	rr = f.do(http.MethodPost, "/api/v1/projects", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPut, "/api/v1/projects/"+projectID, `{"status":"ARCHIVED"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjects_OwnershipIsNotFound(t *testing.T) {
	f := newFixture("uid-2", false)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rr := f.do(method, "/api/v1/projects/"+projectID, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, method)
	}
	rr := f.do(http.MethodPut, "/api/v1/projects/"+projectID, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjects_UpstreamFailureIsGeneric(t *testing.T) {
	f := newFixture("uid-1", false)
	f.projects.err = &domain.UpstreamError{Op: "get project", Err: errors.New("pq: password authentication failed")}

	rr := f.do(http.MethodGet, "/api/v1/projects/"+projectID, "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"ok":false,"error":"internal error"}`, rr.Body.String())
}

func TestProducts_ProjectFilter(t *testing.T) {
	f := newFixture("uid-1", false)
	rr := f.do(http.MethodGet, "/api/v1/products?projectId="+projectID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, projectID, f.products.lastProjectFilter)

	rr = f.do(http.MethodPost, "/api/v1/products", `{"title":"P"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProductTypes(t *testing.T) {
	f := newFixture("uid-1", false)
	rr := f.do(http.MethodGet, "/api/v1/product-types", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/api/v1/product-types", `{"code":"PATENTE","description":"d","quality":"q","category":"c"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	f = newFixture("uid-1", true)
	rr = f.do(http.MethodPost, "/api/v1/product-types", `{"code":"PATENTE","description":"d","category":"c"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decode(t, rr)["details"].([]any)
	assert.Equal(t, "quality", details[0].(map[string]any)["field"])
	assert.Equal(t, 0, f.types.created)

	rr = f.do(http.MethodPost, "/api/v1/product-types", `{"code":"PATENTE","description":"d","quality":"q","category":"c"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestPublicListing_QueryNormalisation(t *testing.T) {
	f := newFixture("", false)

	rr := f.do(http.MethodGet, "/api/v1/public/projects?limit=abc&offset=-3&search=%20innovation%20", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PublicQuery{Limit: 10, Offset: 0, Search: "innovation"}, f.public.last)

	rr = f.do(http.MethodGet, "/api/v1/public/projects/showcase", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 6, f.public.last.Limit)
	pagination := decode(t, rr)["pagination"].(map[string]any)
	assert.Equal(t, false, pagination["has_more"])
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (f *fixture) upload(t *testing.T, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestUpload_Single(t *testing.T) {
	f := newFixture("uid-1", false)

	rr := f.upload(t, map[string]string{"entityType": "project", "entityId": projectID}, map[string]string{"report.pdf": "%PDF"})
	require.Equal(t, http.StatusOK, rr.Code)
	attachment := decode(t, rr)["attachment"].(map[string]any)
	assert.Equal(t, "report.pdf", attachment["file_name"])
	assert.Equal(t, float64(4), attachment["file_size"])

	rr = f.upload(t, map[string]string{"entityType": "project", "entityId": projectID, "fileName": "Renamed.pdf"}, map[string]string{"x.pdf": "%PDF"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Renamed.pdf", f.attachments.files[len(f.attachments.files)-1].FileName)
}

func TestUpload_Invalid(t *testing.T) {
	f := newFixture("uid-1", false)

	rr := f.upload(t, map[string]string{"entityType": "user", "entityId": projectID}, map[string]string{"x.pdf": "%PDF"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.upload(t, map[string]string{"entityType": "project", "entityId": projectID}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.upload(t, map[string]string{"entityType": "project", "entityId": projectID}, map[string]string{"bad.pdf": "%PDF"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "bucket gone")

	rr = f.do(http.MethodPost, "/api/v1/upload", `{"entityType":"project"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpload_Many(t *testing.T) {
	f := newFixture("uid-1", false)
	rr := f.upload(t, map[string]string{"entityType": "project", "entityId": projectID},
		map[string]string{"a.pdf": "1", "bad.pdf": "2", "c.pdf": "3"})
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, float64(2), body["succeeded"])
	assert.Len(t, body["results"], 3)
}

func TestDeleteUpload(t *testing.T) {
	f := newFixture("uid-1", false)

	rr := f.do(http.MethodDelete, "/api/v1/upload", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodDelete, "/api/v1/upload?id="+projectID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, projectID, f.attachments.detached)
	assert.Equal(t, "attachment deleted", decode(t, rr)["message"])
}
