package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"oralscan-backend/internal/diagnosis"
	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/models"
	"oralscan-backend/internal/repository"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// asUser stands in for AuthMiddleware.
func asUser(id uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response with Data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// memPatients is an owner-scoped in-memory patient store.
type memPatients struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]models.Patient
}

func newMemPatients(seed ...models.Patient) *memPatients {
	m := &memPatients{rows: map[uint64]models.Patient{}}
	for _, p := range seed {
		m.rows[p.ID] = p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memPatients) Create(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = *p
	return nil
}

func (m *memPatients) ListByDoctor(_ context.Context, doctorID uint64) ([]models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Patient{}
	for _, p := range m.rows {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPatients) FindForDoctor(_ context.Context, doctorID, id uint64) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.DoctorID != doctorID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPatients) Update(_ context.Context, doctorID, id uint64, in models.PatientInput) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.DoctorID != doctorID {
		return nil, repository.ErrNotFound
	}
	in.Apply(&p)
	m.rows[id] = p
	return &p, nil
}

func (m *memPatients) Delete(_ context.Context, doctorID, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.DoctorID != doctorID {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memPatients) Exists(_ context.Context, doctorID, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	return ok && p.DoctorID == doctorID, nil
}

func (m *memPatients) get(id uint64) (models.Patient, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	return p, ok
}

type memScans struct {
	rows []models.Scan
}

func (m *memScans) ListByUser(_ context.Context, userID uint64, patientID *uint64) ([]models.Scan, error) {
	out := []models.Scan{}
	for _, s := range m.rows {
		if s.UserID != userID {
			continue
		}
		if patientID != nil && (s.PatientID == nil || *s.PatientID != *patientID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memScans) FindForUser(_ context.Context, userID, id uint64) (*models.Scan, error) {
	for _, s := range m.rows {
		if s.ID == id && s.UserID == userID {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, req diagnosis.Request) (*diagnosis.Outcome, error)
	calls       int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req diagnosis.Request) (*diagnosis.Outcome, error) {
	m.calls++
	return m.AnalyzeFunc(ctx, req)
}

type mockSubmitter struct {
	SubmitFunc func(ctx context.Context, req diagnosis.Request) (*models.Scan, error)
}

func (m *mockSubmitter) Submit(ctx context.Context, req diagnosis.Request) (*models.Scan, error) {
	return m.SubmitFunc(ctx, req)
}

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[uint64]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uint64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) update(id uint64, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	m.rows[id] = u
	return nil
}

func (m *memUsers) UpdateName(_ context.Context, id uint64, name string) error {
	return m.update(id, func(u *models.User) { u.Name = name })
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) UpdateFCMToken(_ context.Context, id uint64, token string) error {
	return m.update(id, func(u *models.User) { u.FCMToken = token })
}

// seedUser stores a user with a real bcrypt hash.
func seedUser(t *testing.T, users *memUsers, email, password string) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Name: "Dr. Test", Email: email, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), &u))
	return u
}
