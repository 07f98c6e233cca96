package controller

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const attachmentsField = "attachments"

func isMultipart(ctx *fiber.Ctx) bool {
	return strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// noteForm holds the text fields of a multipart note request.
type noteForm struct {
	Title      string
	Content    string
	CategoryId *uuid.UUID
	IsPinned   bool
	Tags       []string
	HasTags    bool
}

func readNoteForm(ctx *fiber.Ctx) (*noteForm, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid multipart body")
	}

	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	out := &noteForm{
		Title:   value("title"),
		Content: value("content"),
	}

	if raw := strings.TrimSpace(value("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "category_id", Message: "category_id must be a valid UUID"})
		}
		out.CategoryId = &id
	}

	if raw := value("is_pinned"); raw != "" {
		pinned, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "is_pinned", Message: "is_pinned must be a boolean"})
		}
		out.IsPinned = pinned
	}

	// tags arrive either as repeated fields or as one JSON array.
	if values, ok := form.Value["tags"]; ok {
		out.HasTags = true
		out.Tags = []string{}
		if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
			if err := json.Unmarshal([]byte(values[0]), &out.Tags); err != nil {
				return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "tags", Message: "tags must be an array of strings"})
			}
		} else {
			for _, v := range values {
				if strings.TrimSpace(v) != "" {
					out.Tags = append(out.Tags, v)
				}
			}
		}
	}
	return out, nil
}

// saveUploads writes the attachments of a multipart request to storage. On
// any failure the files already written are removed.
func saveUploads(ctx *fiber.Ctx, files storage.FileStorage, maxFiles int) ([]dto.UploadedFile, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid multipart body")
	}

	headers := form.File[attachmentsField]
	if len(headers) > maxFiles {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{
			Field:   attachmentsField,
			Message: "Too many files. Maximum is " + strconv.Itoa(maxFiles),
		})
	}

	saved := make([]dto.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		stored, err := files.SaveMultipart(ctx.UserContext(), fh)
		if err != nil {
			removeUploads(ctx.UserContext(), files, saved)
			return nil, err
		}
		saved = append(saved, dto.UploadedFile{
			StoredName:   stored.StoredName,
			OriginalName: stored.OriginalName,
			MimeType:     stored.MimeType,
			Size:         stored.Size,
			Path:         stored.Path,
		})
	}
	return saved, nil
}

func removeUploads(ctx context.Context, files storage.FileStorage, saved []dto.UploadedFile) {
	for _, f := range saved {
		_ = files.Delete(ctx, f.Path)
	}
}
