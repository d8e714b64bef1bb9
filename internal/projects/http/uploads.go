package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

const multipartMemory = 8 << 20

// upload accepts one or more "file" parts. A single file answers with the
// attachment; several files answer with one outcome per file.
func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartMemory)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "must be a multipart form"
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("must be at most %d bytes", h.maxUpload)
		}
		writeError(c, fieldError("file", msg))
		return
	}
	parts := form.File["file"]
	if len(parts) == 0 {
		writeError(c, fieldError("file", "is required"))
		return
	}

	req := validation.UploadRequest{
		EntityType: formValue(form, "entityType"),
		EntityID:   formValue(form, "entityId"),
		FileName:   formValue(form, "fileName"),
	}
	target, fileName, err := validation.Upload(req, parts[0].Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	files := make([]domain.FileUpload, 0, len(parts))
	for i, p := range parts {
		f, err := readPart(p)
		if err != nil {
			writeError(c, fieldError("file", "could not be read"))
			return
		}
		if i == 0 {
			f.FileName = fileName
		}
		files = append(files, f)
	}

	uid := auth.UserFirebaseUID(c)
	if len(files) == 1 {
		a, err := h.attachments.Attach(c.Request.Context(), uid, target, files[0])
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "attachment": a})
		return
	}

	outcomes := h.attachments.AttachMany(c.Request.Context(), uid, target, files)
	succeeded := 0
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": succeeded == len(outcomes), "results": outcomes, "succeeded": succeeded})
}

func (h *Handler) deleteUpload(c *gin.Context) {
	id, err := validation.AttachmentID(c.Query("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.attachments.Detach(c.Request.Context(), auth.UserFirebaseUID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "attachment deleted"})
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func readPart(fh *multipart.FileHeader) (domain.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.FileUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.FileUpload{}, err
	}
	return domain.FileUpload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func fieldError(field, msg string) error {
	ve := &domain.ValidationError{}
	ve.Add(field, msg)
	return ve
}
