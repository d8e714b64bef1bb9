package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

func TestAttach_StoresUnderEntityFolder(t *testing.T) {
	h := newHarness()
	p := h.project(t, alice, "P", false)

	a, err := h.attachments.Attach(context.Background(), alice,
		domain.AttachTarget{EntityType: domain.EntityProject, EntityID: p.ID}, file("report.pdf"))
	require.NoError(t, err)
	assert.Contains(t, a.StorageKey, "ctein-nexus/projects/"+p.ID+"/")
	assert.Equal(t, "report.pdf", a.FileName)
	assert.Equal(t, int64(len("%PDF-1.4 report.pdf")), a.FileSize)
	require.NotNil(t, a.ProjectID)
	assert.Nil(t, a.ProductID)
}

func TestAttach_SniffsMissingMimeType(t *testing.T) {
	h := newHarness()
	p := h.project(t, alice, "P", false)

	a, err := h.attachments.Attach(context.Background(), alice,
		domain.AttachTarget{EntityType: domain.EntityProject, EntityID: p.ID},
		domain.FileUpload{FileName: "notes.txt", Data: []byte("plain text notes")})
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", a.MimeType)
}

func TestAttach_SniffsOfficeDocuments(t *testing.T) {
	h := newHarness()
	p := h.project(t, alice, "P", false)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	a, err := h.attachments.Attach(context.Background(), alice,
		domain.AttachTarget{EntityType: domain.EntityProject, EntityID: p.ID},
		domain.FileUpload{FileName: "brief.docx", MimeType: "application/octet-stream", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", a.MimeType)
}

func TestAttach_Failures(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	p := h.project(t, alice, "P", false)
	target := domain.AttachTarget{EntityType: domain.EntityProject, EntityID: p.ID}

	t.Run("foreign parent", func(t *testing.T) {
		_, err := h.attachments.Attach(ctx, bob, target, file("x.pdf"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, h.blobs.count())
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := h.attachments.Attach(ctx, alice, target, domain.FileUpload{FileName: "x.pdf"})
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("upload failure leaves no row", func(t *testing.T) {
		h.blobs.failNames["broken.pdf"] = true
		_, err := h.attachments.Attach(ctx, alice, target, file("broken.pdf"))
		var ue *domain.UpstreamError
		assert.True(t, errors.As(err, &ue))
		assert.Equal(t, 0, h.attachStore.count())
	})

	t.Run("row failure removes the uploaded blob", func(t *testing.T) {
		h.db.failAttachmentCreate = true
		defer func() { h.db.failAttachmentCreate = false }()

		_, err := h.attachments.Attach(ctx, alice, target, file("ok.pdf"))
		assert.Error(t, err)
		assert.Equal(t, 0, h.blobs.count())
		assert.Equal(t, 0, h.attachStore.count())
	})
}

func TestAttachThenDetach_RowGoneEvenWhenBlobDeleteFails(t *testing.T) {
	for _, blobErr := range []error{nil, errors.New("s3 timeout")} {
		h := newHarness()
		ctx := context.Background()
		pt := h.productType(t, "LIBRO")
		p := h.project(t, alice, "P", false)
		pr := h.product(t, alice, p.ID, pt.ID, false)

		a, err := h.attachments.Attach(ctx, alice, domain.AttachTarget{EntityType: domain.EntityProduct, EntityID: pr.ID}, file("x.pdf"))
		require.NoError(t, err)

		require.ErrorIs(t, h.attachments.Detach(ctx, bob, a.ID), domain.ErrNotFound)

		h.blobs.deleteErr = blobErr
		require.NoError(t, h.attachments.Detach(ctx, alice, a.ID))
		assert.Equal(t, 0, h.attachStore.count())

		if blobErr != nil {
			assert.Equal(t, []string{a.StorageKey}, h.orphans.keys)
		} else {
			assert.Empty(t, h.orphans.keys)
		}

		assert.ErrorIs(t, h.attachments.Detach(ctx, alice, a.ID), domain.ErrNotFound)
	}
}

func TestAttachMany_IndependentOutcomes(t *testing.T) {
	h := newHarness()
	p := h.project(t, alice, "P", false)
	h.blobs.failNames["2.pdf"] = true

	files := []domain.FileUpload{file("1.pdf"), file("2.pdf"), file("3.pdf"), file("4.pdf")}
	out := h.attachments.AttachMany(context.Background(), alice,
		domain.AttachTarget{EntityType: domain.EntityProject, EntityID: p.ID}, files)

	require.Len(t, out, 4)
	ok := 0
	for i, o := range out {
		assert.Equal(t, files[i].FileName, o.FileName)
		if o.OK() {
			ok++
			assert.NotNil(t, o.Attachment)
		} else {
			assert.Equal(t, "2.pdf", o.FileName)
			assert.Equal(t, "internal error", o.Error)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, h.attachStore.count())
}
