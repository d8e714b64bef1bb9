package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// memDB is an in-memory stand-in for the PostgreSQL schema, cascades included.
type memDB struct {
	mu          sync.Mutex
	projects    map[string]domain.Project
	products    map[string]domain.Product
	types       map[string]domain.ProductType
	attachments map[string]domain.Attachment
	creators    map[string]string
	tick        int

	failAttachmentCreate bool
}

func newMemDB() *memDB {
	return &memDB{
		projects:    map[string]domain.Project{},
		products:    map[string]domain.Product{},
		types:       map[string]domain.ProductType{},
		attachments: map[string]domain.Attachment{},
		creators:    map[string]string{},
	}
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func (db *memDB) now() time.Time {
	db.tick++
	return epoch.Add(time.Duration(db.tick) * time.Minute)
}

func (db *memDB) counts(projectID string) domain.Counts {
	var c domain.Counts
	for _, pr := range db.products {
		if pr.ProjectID == projectID {
			c.Products++
		}
	}
	for _, a := range db.attachments {
		if a.ProjectID != nil && *a.ProjectID == projectID {
			c.Attachments++
		}
	}
	return c
}

func (db *memDB) cascadeKeys(projectID, productID string) []string {
	var keys []string
	for _, a := range db.attachments {
		switch {
		case a.ProjectID != nil && *a.ProjectID == projectID:
			keys = append(keys, a.StorageKey)
		case a.ProductID != nil && *a.ProductID == productID:
			keys = append(keys, a.StorageKey)
		case a.ProductID != nil && projectID != "" && db.products[*a.ProductID].ProjectID == projectID:
			keys = append(keys, a.StorageKey)
		}
	}
	sort.Strings(keys)
	return keys
}

func (db *memDB) deleteProductLocked(id string) {
	for aid, a := range db.attachments {
		if a.ProductID != nil && *a.ProductID == id {
			delete(db.attachments, aid)
		}
	}
	delete(db.products, id)
}

func (db *memDB) stores() (*memProjects, *memProducts, *memTypes, *memAttachments, *memPublic) {
	return &memProjects{db}, &memProducts{db}, &memTypes{db}, &memAttachments{db}, &memPublic{db}
}

type memProjects struct{ db *memDB }

func (s *memProjects) Create(_ context.Context, ownerID string, in domain.NewProject) (*domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := s.db.now()
	p := domain.Project{
		ID: uuid.NewString(), Title: in.Title, Summary: in.Summary, Keywords: in.Keywords,
		Status: domain.StatusProposed, ProponentEntity: in.ProponentEntity,
		StartDate: in.StartDate, EndDate: in.EndDate, Budget: in.Budget, IsPublic: in.IsPublic,
		OwnerID: ownerID, CreatedAt: now, UpdatedAt: now,
		Products: []domain.Product{}, Attachments: []domain.Attachment{},
	}
	s.db.projects[p.ID] = p
	return &p, nil
}

func (s *memProjects) GetOwned(_ context.Context, id, ownerID string) (*domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	p.Counts = s.db.counts(id)
	p.Products = []domain.Product{}
	p.Attachments = []domain.Attachment{}
	return &p, nil
}

func (s *memProjects) ListByOwner(_ context.Context, ownerID string) ([]domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []domain.Project{}
	for _, p := range s.db.projects {
		if p.OwnerID == ownerID {
			p.Counts = s.db.counts(p.ID)
			p.Products = []domain.Product{}
			p.Attachments = []domain.Attachment{}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memProjects) Update(_ context.Context, id, ownerID string, patch domain.ProjectPatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || p.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Summary != nil {
		p.Summary = *patch.Summary
	}
	if patch.Keywords != nil {
		p.Keywords = patch.Keywords
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.ProponentEntity != nil {
		p.ProponentEntity = *patch.ProponentEntity
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	if patch.Budget != nil {
		p.Budget = patch.Budget
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	p.UpdatedAt = s.db.now()
	s.db.projects[id] = p
	return nil
}

func (s *memProjects) Delete(_ context.Context, id, ownerID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || p.OwnerID != ownerID {
		return false, nil
	}
	for pid, pr := range s.db.products {
		if pr.ProjectID == id {
			s.db.deleteProductLocked(pid)
		}
	}
	for aid, a := range s.db.attachments {
		if a.ProjectID != nil && *a.ProjectID == id {
			delete(s.db.attachments, aid)
		}
	}
	delete(s.db.projects, id)
	return true, nil
}

func (s *memProjects) StorageKeys(_ context.Context, id string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.cascadeKeys(id, ""), nil
}

type memProducts struct{ db *memDB }

func (s *memProducts) fill(pr domain.Product) domain.Product {
	if pt, ok := s.db.types[pr.ProductTypeID]; ok {
		pr.ProductType = &pt
	}
	if p, ok := s.db.projects[pr.ProjectID]; ok {
		pr.Project = &domain.ProjectRef{ID: p.ID, Title: p.Title, IsPublic: p.IsPublic}
	}
	pr.Attachments = []domain.Attachment{}
	return pr
}

func (s *memProducts) Create(_ context.Context, ownerID string, in domain.NewProduct) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := s.db.now()
	pr := domain.Product{
		ID: uuid.NewString(), Title: in.Title, Summary: in.Summary, Description: in.Description,
		ProductURL: in.ProductURL, ProductTypeID: in.ProductTypeID, ProjectID: in.ProjectID,
		IsPublic: in.IsPublic, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now,
	}
	s.db.products[pr.ID] = pr
	return pr.ID, nil
}

func (s *memProducts) GetOwned(_ context.Context, id, ownerID string) (*domain.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pr, ok := s.db.products[id]
	if !ok || pr.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	pr = s.fill(pr)
	return &pr, nil
}

func (s *memProducts) list(keep func(domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, pr := range s.db.products {
		if keep(pr) {
			out = append(out, s.fill(pr))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memProducts) ListByOwner(_ context.Context, ownerID, projectID string) ([]domain.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(func(pr domain.Product) bool {
		return pr.OwnerID == ownerID && (projectID == "" || pr.ProjectID == projectID)
	}), nil
}

func (s *memProducts) ListByProjects(_ context.Context, projectIDs []string, publicOnly bool) ([]domain.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	set := map[string]bool{}
	for _, id := range projectIDs {
		set[id] = true
	}
	return s.list(func(pr domain.Product) bool {
		return set[pr.ProjectID] && (!publicOnly || pr.IsPublic)
	}), nil
}

func (s *memProducts) Update(_ context.Context, id, ownerID string, patch domain.ProductPatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pr, ok := s.db.products[id]
	if !ok || pr.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	if patch.Title != nil {
		pr.Title = *patch.Title
	}
	if patch.Summary != nil {
		pr.Summary = *patch.Summary
	}
	if patch.Description != nil {
		pr.Description = patch.Description
		if *patch.Description == "" {
			pr.Description = nil
		}
	}
	if patch.ProductURL != nil {
		pr.ProductURL = patch.ProductURL
		if *patch.ProductURL == "" {
			pr.ProductURL = nil
		}
	}
	if patch.ProductTypeID != nil {
		pr.ProductTypeID = *patch.ProductTypeID
	}
	if patch.ProjectID != nil {
		pr.ProjectID = *patch.ProjectID
	}
	if patch.IsPublic != nil {
		pr.IsPublic = *patch.IsPublic
	}
	s.db.products[id] = pr
	return nil
}

func (s *memProducts) Delete(_ context.Context, id, ownerID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pr, ok := s.db.products[id]
	if !ok || pr.OwnerID != ownerID {
		return false, nil
	}
	s.db.deleteProductLocked(id)
	return true, nil
}

func (s *memProducts) StorageKeys(_ context.Context, id string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.cascadeKeys("", id), nil
}

type memTypes struct{ db *memDB }

func (s *memTypes) Create(_ context.Context, in domain.NewProductType) (*domain.ProductType, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, pt := range s.db.types {
		if pt.Code == in.Code {
			return nil, domain.ErrConflict
		}
	}
	pt := domain.ProductType{ID: uuid.NewString(), Code: in.Code, Description: in.Description, Quality: in.Quality, Category: in.Category}
	s.db.types[pt.ID] = pt
	return &pt, nil
}

func (s *memTypes) Get(_ context.Context, id string) (*domain.ProductType, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pt, ok := s.db.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &pt, nil
}

func (s *memTypes) List(_ context.Context) ([]domain.ProductType, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []domain.ProductType{}
	for _, pt := range s.db.types {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

type memAttachments struct{ db *memDB }

func (s *memAttachments) Create(_ context.Context, a *domain.Attachment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failAttachmentCreate {
		return errors.New("connection reset")
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.db.now()
	s.db.attachments[a.ID] = *a
	return nil
}

func (s *memAttachments) GetOwned(_ context.Context, id, ownerID string) (*domain.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.attachments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	owner := ""
	if a.ProjectID != nil {
		owner = s.db.projects[*a.ProjectID].OwnerID
	} else if a.ProductID != nil {
		owner = s.db.products[*a.ProductID].OwnerID
	}
	if owner != ownerID {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *memAttachments) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.attachments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.db.attachments, id)
	return nil
}

func (s *memAttachments) list(match func(domain.Attachment) bool) []domain.Attachment {
	out := []domain.Attachment{}
	for _, a := range s.db.attachments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memAttachments) ListByProjects(_ context.Context, ids []string) ([]domain.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	set := toSet(ids)
	return s.list(func(a domain.Attachment) bool { return a.ProjectID != nil && set[*a.ProjectID] }), nil
}

func (s *memAttachments) ListByProducts(_ context.Context, ids []string) ([]domain.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	set := toSet(ids)
	return s.list(func(a domain.Attachment) bool { return a.ProductID != nil && set[*a.ProductID] }), nil
}

func (s *memAttachments) count() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.attachments)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type memPublic struct{ db *memDB }

func (s *memPublic) matches(p domain.Project, search string) bool {
	if !p.IsPublic {
		return false
	}
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Summary), term) {
		return true
	}
	for _, k := range p.Keywords {
		if strings.EqualFold(k, search) {
			return true
		}
	}
	return false
}

func (s *memPublic) Count(_ context.Context, search string) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, p := range s.db.projects {
		if s.matches(p, search) {
			n++
		}
	}
	return n, nil
}

func (s *memPublic) Page(_ context.Context, search string, take, offset int) ([]domain.PublicProject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var all []domain.Project
	for _, p := range s.db.projects {
		if s.matches(p, search) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := []domain.PublicProject{}
	for i := offset; i < len(all) && len(out) < take; i++ {
		p := all[i]
		pp := domain.PublicProject{
			ID: p.ID, Title: p.Title, Summary: p.Summary, Keywords: p.Keywords, Status: p.Status,
			ProponentEntity: p.ProponentEntity, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
			Counts: s.db.counts(p.ID), Products: []domain.PublicProduct{},
		}
		if name, ok := s.db.creators[p.OwnerID]; ok {
			pp.CreatorName = &name
		}
		out = append(out, pp)
	}
	return out, nil
}

// fakeBlobs is an in-memory blob store with injectable failures.
type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failNames map[string]bool
	deleteErr error
	deleted   []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, failNames: map[string]bool{}}
}

func (b *fakeBlobs) Upload(_ context.Context, folder, fileName, _ string, data []byte) (blobstore.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNames[fileName] {
		return blobstore.Object{}, errors.New("storage unavailable")
	}
	key := blobstore.ObjectKey(folder, fileName)
	b.objects[key] = data
	return blobstore.Object{URL: "https://blobs.test/" + key, Key: key}, nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type fakeOrphans struct {
	mu   sync.Mutex
	keys []string
}

func (o *fakeOrphans) RecordOrphan(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, key)
	return nil
}

// mapCache is a Cache backed by a map of JSON documents.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) SetJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
