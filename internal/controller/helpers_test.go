package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type caller struct {
	id    uuid.UUID
	email string
	role  entity.UserRole
}

func newCaller(role entity.UserRole) caller {
	return caller{id: uuid.New(), email: "me@example.com", role: role}
}

// fakeAuth stands in for the JWT middleware.
func (c caller) fakeAuth(ctx *fiber.Ctx) error {
	ctx.Locals(serverutils.LocalUserID, c.id.String())
	ctx.Locals(serverutils.LocalEmail, c.email)
	ctx.Locals(serverutils.LocalRole, string(c.role))
	return ctx.Next()
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*entity.AuditLog
}

func (r *recordingAudit) Record(_ context.Context, log *entity.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, log)
}

func (r *recordingAudit) all() []*entity.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.AuditLog(nil), r.entries...)
}

func newApp(who caller, audit *recordingAudit) (*fiber.App, Middleware) {
	app := fiber.New(fiber.Config{
		ErrorHandler: serverutils.NewErrorHandler(logger.NewNopLogger(), true),
	})
	mw := Middleware{Auth: who.fakeAuth}
	if audit != nil {
		mw.Audit = audit
	}
	return app, mw
}

func newCoordinator() *cache.Coordinator {
	m := metrics.NewMetricsWith("test", prometheus.NewRegistry())
	return cache.NewCoordinator(cache.NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger(), m)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var body envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return res.StatusCode, body
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

type formFile struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, method, target string, fields map[string][]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(attachmentsField, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

// memFiles records saves and deletes; failOn makes SaveMultipart fail for a
// file name.
type memFiles struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	failOn  map[string]error
}

func (m *memFiles) Save(_ context.Context, originalName string, r io.Reader) (*storage.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[originalName]; err != nil {
		return nil, err
	}
	n, _ := io.Copy(io.Discard, r)
	path := "/uploads/" + originalName
	m.saved = append(m.saved, path)
	return &storage.StoredFile{StoredName: originalName, OriginalName: originalName, MimeType: "text/plain", Size: n, Path: path}, nil
}

func (m *memFiles) SaveMultipart(ctx context.Context, fh *multipart.FileHeader) (*storage.StoredFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.Save(ctx, fh.Filename, f)
}

func (m *memFiles) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memFiles) Resolve(storedName string) (string, error) {
	return "/uploads/" + storedName, nil
}
