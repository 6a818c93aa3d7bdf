package messages_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/nearby/internal/app/features/messages"
	"github.com/dalemusser/nearby/internal/app/store/docstore"
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	membershipstore "github.com/dalemusser/nearby/internal/app/store/memberships"
	messagestore "github.com/dalemusser/nearby/internal/app/store/messages"
	"github.com/dalemusser/nearby/internal/domain/models"
	"github.com/dalemusser/nearby/internal/testutil"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*messages.Handler, *docstore.Memory, *testutil.Fixtures) {
	t.Helper()
	ds := docstore.NewMemory()
	evs := eventstore.New(ds)
	members := membershipstore.New(ds, evs, zap.NewNop())
	h := messages.NewHandler(messagestore.New(ds, members), zap.NewNop())
	return h, ds, testutil.NewFixtures(t, ds)
}

func sendReq(eventID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return testutil.WithChiURLParam(req, "eventId", eventID)
}

func listReq(eventID, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return testutil.WithChiURLParam(req, "eventId", eventID)
}

func TestHandleSend_MemberOnly(t *testing.T) {
	h, _, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)

	rec := httptest.NewRecorder()
	h.HandleSend(rec, sendReq(ev.ID.Hex(), `{"user":"Cy","text":"hey"}`))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-member: got %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Join the event to chat") {
		t.Errorf("non-member body: %s", rec.Body.String())
	}

	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	rec = httptest.NewRecorder()
	h.HandleSend(rec, sendReq(ev.ID.Hex(), `{"user":"Bo","text":"hi"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("member: got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp.ID) != 24 {
		t.Errorf("response id: %q (%v)", resp.ID, err)
	}
}

func TestHandleSend_Invalid(t *testing.T) {
	h, _, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	tests := []struct {
		name    string
		eventID string
		body    string
		status  int
	}{
		{"missing text", ev.ID.Hex(), `{"user":"Bo"}`, http.StatusUnprocessableEntity},
		{"markup only", ev.ID.Hex(), `{"user":"Bo","text":"<b></b>"}`, http.StatusUnprocessableEntity},
		{"not json", ev.ID.Hex(), `hello`, http.StatusUnprocessableEntity},
		{"malformed event id", "zzz", `{"user":"Bo","text":"hi"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleSend(rec, sendReq(tt.eventID, tt.body))
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestServeList(t *testing.T) {
	h, _, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		fixtures.CreateMessage(ctx, ev.ID, "Bo", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	rec := httptest.NewRecorder()
	h.ServeList(rec, listReq(ev.ID.Hex(), "limit=2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var got []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Text != "m2" || got[1].Text != "m3" {
		t.Errorf("got %+v, want [m2 m3]", got)
	}
	if got[0].EventID != ev.ID {
		t.Errorf("event_id: got %s", got[0].EventID.Hex())
	}
}

func TestServeList_EdgeCases(t *testing.T) {
	h, ds, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeList(rec, listReq("not-an-id", ""))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("malformed id: got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeList(rec, listReq("not-an-id", "limit=ten"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad limit: got %d, want 422", rec.Code)
	}

	ds.SetUnavailable(true)
	rec = httptest.NewRecorder()
	h.ServeList(rec, listReq("0123456789abcdef01234567", ""))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("store down: got %d, want 503", rec.Code)
	}
}

func TestHandleSend_TextRoundTrips(t *testing.T) {
	h, _, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	for _, text := range []string{"if x<y then", "Tom & Jerry"} {
		body, _ := json.Marshal(map[string]string{"user": "Bo", "text": text})
		rec := httptest.NewRecorder()
		h.HandleSend(rec, sendReq(ev.ID.Hex(), string(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("send %q: got %d (%s)", text, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.HandleSend(rec, sendReq(ev.ID.Hex(), `{"user":"Bo","text":"<b>hi</b>"}`))
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "HTML markup") {
		t.Errorf("markup: got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeList(rec, listReq(ev.ID.Hex(), ""))
	var got []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Text != "if x<y then" || got[1].Text != "Tom & Jerry" {
		t.Errorf("stored texts: %+v", got)
	}
}
