package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"notevault-be/internal/pkg/apperror"

	"github.com/gabriel-vasile/mimetype"
)

type StoredFile struct {
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
}

type FileStorage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (*StoredFile, error)
	SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (*StoredFile, error)
	// Delete removes a stored file. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	// Resolve maps a stored name to a path inside the storage root.
	Resolve(storedName string) (string, error)
}

// Inventory lists files sitting in storage so they can be reconciled
// against the attachment table.
type Inventory interface {
	// ListOlderThan returns stored names last modified before cutoff.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	Resolve(storedName string) (string, error)
}

type LocalStorage struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
}

func NewLocalStorage(dir string, maxSize int64, allowedTypes []string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}
	return &LocalStorage{dir: dir, maxSize: maxSize, allowed: allowed}, nil
}

func (s *LocalStorage) SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (*StoredFile, error) {
	if fh.Size > s.maxSize {
		return nil, apperror.Validation("File too large", apperror.FieldError{
			Field:   "attachments",
			Message: fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, s.maxSize),
		})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Storage(err)
	}
	defer f.Close()
	return s.Save(ctx, fh.Filename, f)
}

func (s *LocalStorage) Save(_ context.Context, originalName string, r io.Reader) (*StoredFile, error) {
	storedName, err := uniqueFilename(originalName)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	path := filepath.Join(s.dir, storedName)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	written, copyErr := io.Copy(out, io.LimitReader(r, s.maxSize+1))
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		return nil, apperror.Storage(errors.Join(copyErr, closeErr))
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return nil, apperror.Validation("File too large", apperror.FieldError{
			Field:   "attachments",
			Message: fmt.Sprintf("%s exceeds the %d byte limit", originalName, s.maxSize),
		})
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, apperror.Storage(err)
	}
	if !s.isAllowed(mtype) {
		_ = os.Remove(path)
		return nil, apperror.Validation("Invalid file type", apperror.FieldError{
			Field:   "attachments",
			Message: fmt.Sprintf("%s has type %s which is not allowed", originalName, mtype.String()),
		})
	}

	return &StoredFile{
		StoredName:   storedName,
		OriginalName: filepath.Base(originalName),
		MimeType:     baseMime(mtype.String()),
		Size:         written,
		Path:         path,
	}, nil
}

func (s *LocalStorage) isAllowed(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if _, ok := s.allowed[baseMime(m.String())]; ok {
			return true
		}
	}
	return false
}

func (s *LocalStorage) Delete(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) Resolve(storedName string) (string, error) {
	base := filepath.Base(storedName)
	if base == "." || base == ".." || base == string(filepath.Separator) || base != storedName {
		return "", apperror.NotFound("File not found")
	}
	return filepath.Join(s.dir, base), nil
}

func (s *LocalStorage) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed since ReadDir
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func baseMime(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	safeExt     = regexp.MustCompile(`^\.[a-z0-9]{1,9}$`)
)

// uniqueFilename produces "<sanitized-name>-<unixnano>-<random><ext>".
func uniqueFilename(original string) (string, error) {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	name := unsafeChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" || name == "_" {
		name = "file"
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s%s", name, time.Now().UnixNano(), hex.EncodeToString(buf), ext), nil
}
