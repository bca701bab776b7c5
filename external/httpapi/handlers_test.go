package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/attendance/internal/attendance"
	"github.com/campushub/attendance/internal/config"
	"github.com/campushub/attendance/internal/directory"
	"github.com/campushub/attendance/internal/repository"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*repository.Session
	records  map[string]*repository.Record
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]*repository.Session),
		records:  make(map[string]*repository.Record),
	}
}

func recordKey(sessionID, participantID string) string {
	return sessionID + "|" + participantID
}

func (m *memStore) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	endTime := input.EndTime
	sess := &repository.Session{
		ID:          input.ID,
		CourseID:    input.CourseID,
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		CreatedAt:   input.CreatedAt,
		EndTime:     &endTime,
		Status:      repository.SessionStatusActive,
		Location:    input.Location,
		Code:        input.Code,
		LateAfter:   input.LateAfter,
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *memStore) EndSession(_ context.Context, sessionID string, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if sess.Status.Terminal() {
		return nil
	}
	ended := endedAt
	sess.Status = repository.SessionStatusCompleted
	sess.EndTime = &ended
	return nil
}

func (m *memStore) MarkSessionExpired(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if !sess.Status.Terminal() {
		sess.Status = repository.SessionStatusCompleted
	}
	return nil
}

func (m *memStore) CancelSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if !sess.Status.Terminal() {
		sess.Status = repository.SessionStatusCancelled
	}
	return nil
}

func (m *memStore) UpdateSession(_ context.Context, input repository.UpdateSessionInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[input.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	sess.Title = input.Title
	sess.Description = input.Description
	sess.Location = input.Location
	return nil
}

func (m *memStore) GetSessionByID(_ context.Context, sessionID string) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID], nil
}

func (m *memStore) GetSessionByCode(_ context.Context, code string) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if sess.Code == code {
			return sess, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListSessionsByCourse(_ context.Context, courseID string) ([]repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []repository.Session
	for _, sess := range m.sessions {
		if sess.CourseID == courseID {
			list = append(list, *sess)
		}
	}
	return list, nil
}

func (m *memStore) ListSessionsByOwner(_ context.Context, ownerID string) ([]repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []repository.Session
	for _, sess := range m.sessions {
		if sess.OwnerID == ownerID {
			list = append(list, *sess)
		}
	}
	return list, nil
}

func (m *memStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	for key, rec := range m.records {
		if rec.SessionID == sessionID {
			delete(m.records, key)
		}
	}
	return nil
}

func (m *memStore) InsertRecord(_ context.Context, input repository.InsertRecordInput) (*repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(input.SessionID, input.ParticipantID)
	if _, dup := m.records[key]; dup {
		return nil, repository.ErrDuplicateRecord
	}
	m.nextID++
	rec := &repository.Record{
		ID:            fmt.Sprintf("record-%d", m.nextID),
		SessionID:     input.SessionID,
		ParticipantID: input.ParticipantID,
		Timestamp:     input.Timestamp,
		Status:        input.Status,
	}
	m.records[key] = rec
	return rec, nil
}

func (m *memStore) RecordExists(_ context.Context, sessionID, participantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[recordKey(sessionID, participantID)]
	return ok, nil
}

func (m *memStore) GetRecord(_ context.Context, sessionID, participantID string) (*repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[recordKey(sessionID, participantID)], nil
}

func (m *memStore) ListRecordsBySession(_ context.Context, sessionID string) ([]repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []repository.Record
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			list = append(list, *rec)
		}
	}
	return list, nil
}

func (m *memStore) ListRecordsByParticipant(_ context.Context, participantID string) ([]repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []repository.Record
	for _, rec := range m.records {
		if rec.ParticipantID == participantID {
			list = append(list, *rec)
		}
	}
	return list, nil
}

func (m *memStore) UpdateRecordStatus(_ context.Context, recordID string, status repository.RecordStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == recordID {
			rec.Status = status
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func (m *memStore) DeleteRecordsBySession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, rec := range m.records {
		if rec.SessionID == sessionID {
			delete(m.records, key)
		}
	}
	return nil
}

type openDirectory struct{}

func (openDirectory) GetParticipant(_ context.Context, participantID string) (*directory.Participant, error) {
	return &directory.Participant{ID: participantID, Name: participantID, Role: directory.RoleStudent}, nil
}

func (openDirectory) IsCourseMember(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func newTestApp() (*fiber.App, *memStore) {
	store := newMemStore()
	cfg := &config.Config{LateAfterMin: 10}
	lifecycle := attendance.NewLifecycleManager(cfg, store)
	coordinator := attendance.NewCoordinator(lifecycle, store, openDirectory{})
	app := fiber.New()
	NewHandler(lifecycle, coordinator).Register(app)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func createTestSession(t *testing.T, app *fiber.App) sessionJSON {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions", fiber.Map{
		"courseId":        "course-1",
		"title":           "Lecture",
		"ownerId":         "teacher-1",
		"durationMinutes": 15,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var sess sessionJSON
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	return sess
}

func TestCreateSessionEndpoint(t *testing.T) {
	app, _ := newTestApp()

	sess := createTestSession(t, app)
	if sess.ID == "" || sess.Code == "" {
		t.Fatal("expected id and code in response")
	}
	if sess.Token != attendance.BuildToken(sess.ID) {
		t.Fatalf("expected distributable token, got %q", sess.Token)
	}
	if sess.Status != string(repository.SessionStatusActive) {
		t.Fatalf("expected active session, got %q", sess.Status)
	}
}

func TestCreateSessionEndpoint_MissingFields(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions", fiber.Map{"title": "Lecture"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetSessionEndpoint_Missing(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/sessions/no-such-session", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCheckInEndpoint_TokenAndDuplicate(t *testing.T) {
	app, _ := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         sess.Token,
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var rec recordJSON
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}
	if rec.Status != string(repository.RecordStatusPresent) {
		t.Fatalf("expected present, got %q", rec.Status)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         sess.Token,
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}
}

func TestCheckInEndpoint_ManualCode(t *testing.T) {
	app, _ := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"code":          sess.Code,
		"participantId": "bob",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestCheckInEndpoint_TokenCodeExclusive(t *testing.T) {
	app, _ := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         sess.Token,
		"code":          sess.Code,
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when both token and code are set, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when neither token nor code is set, got %d", resp.StatusCode)
	}
}

func TestCheckInEndpoint_MalformedToken(t *testing.T) {
	app, _ := newTestApp()
	createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         "qr://bogus",
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed token, got %d", resp.StatusCode)
	}
}

func TestCheckInEndpoint_ClosedSession(t *testing.T) {
	app, _ := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+sess.ID+"/close", nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         sess.Token,
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for closed session, got %d", resp.StatusCode)
	}
}

func TestMarkManualStatusEndpoint(t *testing.T) {
	app, store := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+sess.ID+"/records", fiber.Map{
		"participantId": "dave",
		"status":        "absent",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	rec, _ := store.GetRecord(context.Background(), sess.ID, "dave")
	if rec == nil || rec.Status != repository.RecordStatusAbsent {
		t.Fatalf("expected persisted absent record, got %+v", rec)
	}

	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/sessions/"+sess.ID+"/records", fiber.Map{
		"participantId": "dave",
		"status":        "excused",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestUpdateRecordStatusEndpoint(t *testing.T) {
	app, store := newTestApp()
	sess := createTestSession(t, app)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/check-ins", fiber.Map{
		"token":         sess.Token,
		"participantId": "alice",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var rec recordJSON
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}

	resp = doJSON(t, app, fiber.MethodPatch, "/api/v1/records/"+rec.ID+"/status", fiber.Map{
		"status": "late",
	})
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	stored, _ := store.GetRecord(context.Background(), sess.ID, "alice")
	if stored.Status != repository.RecordStatusLate {
		t.Fatalf("expected late after override, got %q", stored.Status)
	}
}
