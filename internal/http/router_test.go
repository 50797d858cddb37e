package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/persistence/memory"
	"github.com/example/roombot/internal/testfixtures"
)

const testAdminKey = "s3cret-admin"

type routerHarness struct {
	handler http.Handler
	store   *memory.Storage
	harness *testfixtures.CommandHarness
}

func newRouterHarness(t *testing.T, adminHash string) routerHarness {
	t.Helper()

	harness := testfixtures.NewCommandHarness(t, application.CommandServiceDeps{})
	rooms := harness.Factory.NewRoomService(testfixtures.RoomServiceDeps{Rooms: harness.Store, IDGenerator: application.NewRoomID})

	handler := NewRouter(RouterConfig{
		Webhook:        NewWebhookHandler(WebhookConfig{Commands: harness.Service, Token: testWebhookToken}),
		Rooms:          NewRoomHandler(rooms, nil),
		Audit:          NewAuditHandler(harness.Store, nil),
		AdminKeyHash:   adminHash,
		Metrics:        &recordingObserver{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
	return routerHarness{handler: handler, store: harness.Store, harness: harness}
}

func (h routerHarness) do(t *testing.T, method, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	t.Parallel()

	h := newRouterHarness(t, "")

	if rec := h.do(t, http.MethodGet, "/healthz", nil, ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodGet, "/metrics", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/admin/rooms", nil, testAdminKey); rec.Code != http.StatusNotFound {
		t.Fatalf("expected admin routes to be unmounted without a hash, got %d", rec.Code)
	}

	rec := h.do(t, http.MethodPost, "/webhook", webhookRequest{Token: testWebhookToken, WriterEmail: "alice@example.com", Text: "list"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected webhook 200, got %d", rec.Code)
	}
	if resp := decodeWebhook(t, rec); !strings.Contains(resp.Body, "회의실 A") {
		t.Fatalf("expected room list in body, got %q", resp.Body)
	}
	if rec := h.do(t, http.MethodGet, "/webhook", nil, ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /webhook, got %d", rec.Code)
	}
}

func TestRouter_AdminRooms(t *testing.T) {
	t.Parallel()

	h := newRouterHarness(t, hashTestKey(t, testAdminKey))

	if rec := h.do(t, http.MethodGet, "/admin/rooms", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec := h.do(t, http.MethodPost, "/admin/rooms", roomRequest{Code: "D", Name: "회의실 D", Capacity: 6, ResourceEmail: "Room-D@example.com"}, testAdminKey)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created roomResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created room: %v", err)
	}
	if created.Room.ID == "" || created.Room.ResourceEmail != "room-d@example.com" {
		t.Fatalf("unexpected created room %+v", created.Room)
	}

	rec = h.do(t, http.MethodPost, "/admin/rooms", roomRequest{Code: "d", Name: "dup", Capacity: 2}, testAdminKey)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate code, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/admin/rooms", roomRequest{Code: "bad code!", Capacity: 0}, testAdminKey)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var invalid errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&invalid); err != nil {
		t.Fatalf("decode validation error: %v", err)
	}
	if invalid.Errors["name"] != "회의실 이름은 필수입니다." || invalid.Errors["capacity"] == "" || invalid.Errors["code"] == "" {
		t.Fatalf("expected localized field errors, got %+v", invalid.Errors)
	}

	rec = h.do(t, http.MethodPut, "/admin/rooms/"+created.Room.ID, roomRequest{Code: "D", Name: "대회의실 D", Capacity: 10}, testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/admin/rooms/"+created.Room.ID, nil, testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", rec.Code)
	}
	var fetched roomResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode fetched room: %v", err)
	}
	if fetched.Room.Name != "대회의실 D" || fetched.Room.Capacity != 10 {
		t.Fatalf("expected updated room, got %+v", fetched.Room)
	}

	if rec := h.do(t, http.MethodGet, "/admin/rooms/unknown", nil, testAdminKey); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/admin/rooms", nil, testAdminKey)
	var list listRoomsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode room list: %v", err)
	}
	codes := make([]string, 0, len(list.Rooms))
	for _, room := range list.Rooms {
		codes = append(codes, room.Code)
	}
	if strings.Join(codes, ",") != "A,B,C,D" {
		t.Fatalf("expected rooms ordered by code, got %v", codes)
	}
}

func TestRouter_AdminAudit(t *testing.T) {
	t.Parallel()

	h := newRouterHarness(t, hashTestKey(t, testAdminKey))
	h.harness.Handle("alice@example.com", "help")
	h.harness.Handle("alice@example.com", "book Z tomorrow 10:00 60")

	rec := h.do(t, http.MethodGet, "/admin/audit?limit=1", nil, testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp auditResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("expected limit to apply, got %d entries", len(resp.Entries))
	}
	if resp.Entries[0].Success || resp.Entries[0].CommandKind != "book" {
		t.Fatalf("expected newest failed book entry first, got %+v", resp.Entries[0])
	}

	if rec := h.do(t, http.MethodGet, "/admin/audit?limit=abc", nil, testAdminKey); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

type failingAudit struct{}

func (failingAudit) ListAudit(context.Context, int) ([]persistence.AuditEntry, error) {
	return nil, persistence.ErrNotFound
}

func TestAuditHandler_StoreFailure(t *testing.T) {
	t.Parallel()

	handler := NewAuditHandler(failingAudit{}, nil)
	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
