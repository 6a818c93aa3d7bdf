package messagestore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	membershipstore "github.com/dalemusser/nearby/internal/app/store/memberships"
	messagestore "github.com/dalemusser/nearby/internal/app/store/messages"
	"github.com/dalemusser/nearby/internal/domain/models"
	"github.com/dalemusser/nearby/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stores struct {
	events   *eventstore.Store
	members  *membershipstore.Store
	messages *messagestore.Store
}

func newStores(ds docstore.Store) stores {
	events := eventstore.New(ds)
	members := membershipstore.New(ds, events, zap.NewNop())
	return stores{
		events:   events,
		members:  members,
		messages: messagestore.New(ds, members),
	}
}

func TestStore_Send_RequiresMembership(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)

	_, err := s.messages.Send(ctx, ev.ID.Hex(), "Bo", "hi")
	if !errors.Is(err, messagestore.ErrNotAMember) {
		t.Fatalf("before join: expected ErrNotAMember, got %v", err)
	}

	if _, err := s.members.Join(ctx, ev.ID.Hex(), "Bo"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	id, err := s.messages.Send(ctx, ev.ID.Hex(), "Bo", "hi")
	if err != nil {
		t.Fatalf("after join: Send failed: %v", err)
	}
	if id.IsZero() {
		t.Error("expected a message id")
	}
}

func TestStore_Send_MalformedEventID(t *testing.T) {
	s := newStores(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := s.messages.Send(ctx, "zzz", "Bo", "hi")
	if !errors.Is(err, messagestore.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestStore_Send_StoresTextAsSent(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	texts := []string{
		"if x<y then",
		"Tom & Jerry",
		"  padded \n",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"2<3 and 5>4",
	}
	for _, text := range texts {
		if _, err := s.messages.Send(ctx, ev.ID.Hex(), "Bo", text); err != nil {
			t.Fatalf("Send(%q) failed: %v", text, err)
		}
	}

	msgs, err := s.messages.List(ctx, ev.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, m := range msgs {
		if m.Text != texts[i] {
			t.Errorf("message %d: stored %q, want %q", i, m.Text, texts[i])
		}
	}
}

func TestStore_Send_RefusesBlankAndMarkup(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	tests := []struct {
		text string
		want error
	}{
		{"   ", messagestore.ErrInvalidMessage},
		{"<b>hi</b>", messagestore.ErrMarkup},
		{"use <div> for layout", messagestore.ErrMarkup},
		{"<br>", messagestore.ErrMarkup},
		{"<script>x()</script>", messagestore.ErrMarkup},
	}
	for _, tt := range tests {
		if _, err := s.messages.Send(ctx, ev.ID.Hex(), "Bo", tt.text); !errors.Is(err, tt.want) {
			t.Errorf("Send(%q): expected %v, got %v", tt.text, tt.want, err)
		}
	}

	msgs, err := s.messages.List(ctx, ev.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("refused messages were stored: %+v", msgs)
	}
}

func TestStore_List_OldestFirstAndLimited(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	other := fixtures.CreateEvent(ctx, "Al", "Swim", 10, 20)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	// Insert out of order so store order differs from time order.
	for _, i := range []int{3, 0, 4, 1, 2} {
		fixtures.CreateMessage(ctx, ev.ID, "Bo", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	fixtures.CreateMessage(ctx, other.ID, "Cy", "elsewhere", base.Add(time.Hour))

	msgs, err := s.messages.List(ctx, ev.ID.Hex(), 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"m2", "m3", "m4"}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i := range want {
		if msgs[i].Text != want[i] {
			t.Errorf("message %d: got %q, want %q", i, msgs[i].Text, want[i])
		}
	}
	assertNonDecreasing(t, msgs)

	all, err := s.messages.List(ctx, ev.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("default limit: got %d messages, want 5", len(all))
	}
	assertNonDecreasing(t, all)
}

func TestStore_List_Caps(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < messagestore.MaxLimit+10; i++ {
		fixtures.CreateMessage(ctx, ev.ID, "Bo", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	def, err := s.messages.List(ctx, ev.ID.Hex(), -5)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(def) != messagestore.DefaultLimit {
		t.Errorf("non-positive limit: got %d, want %d", len(def), messagestore.DefaultLimit)
	}
	if def[len(def)-1].Text != fmt.Sprintf("m%d", messagestore.MaxLimit+9) {
		t.Errorf("last message should be the newest, got %q", def[len(def)-1].Text)
	}

	big, err := s.messages.List(ctx, ev.ID.Hex(), 10000)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(big) != messagestore.MaxLimit {
		t.Errorf("oversized limit: got %d, want %d", len(big), messagestore.MaxLimit)
	}
}

func TestStore_List_SameTimestampKeepsInsertOrder(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, text := range []string{"first", "second", "third"} {
		fixtures.CreateMessage(ctx, ev.ID, "Bo", text, at)
	}

	msgs, err := s.messages.List(ctx, ev.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Text != "first" || msgs[2].Text != "third" {
		t.Errorf("unexpected order: %+v", msgs)
	}
}

func TestStore_List_OpenToNonMembersAndBadIDs(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	msgs, err := s.messages.List(ctx, "not-an-id", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}

	msgs, err = s.messages.List(ctx, primitive.NewObjectID().Hex(), 10)
	if err != nil || len(msgs) != 0 {
		t.Errorf("unknown event: got (%d, %v)", len(msgs), err)
	}
}

// Create, join, chat, and a refused outsider, end to end.
func TestScenario_JoinAndChat(t *testing.T) {
	ds := docstore.NewMemory()
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := s.events.Create(ctx, models.Event{HostName: "Al", Activity: "Run", Lat: 10.0, Lng: 20.0})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := fixtures.Event(ctx, id).Attendees; got != 0 {
		t.Fatalf("new event attendees: got %d, want 0", got)
	}

	if _, err := s.members.Join(ctx, id.Hex(), "Bo"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if n := fixtures.CountMemberships(ctx, id, "Bo"); n != 1 {
		t.Fatalf("memberships: got %d, want 1", n)
	}
	if got := fixtures.Event(ctx, id).Attendees; got != 1 {
		t.Fatalf("attendees after join: got %d, want 1", got)
	}

	if _, err := s.messages.Send(ctx, id.Hex(), "Bo", "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	msgs, err := s.messages.List(ctx, id.Hex(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].User != "Bo" || msgs[0].Text != "hi" {
		t.Fatalf("messages: got %+v, want [{Bo hi}]", msgs)
	}

	if _, err := s.messages.Send(ctx, id.Hex(), "Cy", "hey"); !errors.Is(err, messagestore.ErrNotAMember) {
		t.Fatalf("outsider send: expected ErrNotAMember, got %v", err)
	}
}

func TestStore_Mongo_SendAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ds := docstore.NewMongo(db, docstore.BreakerConfig{}, nil)
	s := newStores(ds)
	fixtures := testutil.NewFixtures(t, ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "Al", "Run", 10, 20)
	fixtures.CreateMembership(ctx, ev.ID, "Bo")

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.messages.Send(ctx, ev.ID.Hex(), "Bo", text); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	msgs, err := s.messages.List(ctx, ev.ID.Hex(), 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func assertNonDecreasing(t *testing.T, msgs []models.Message) {
	t.Helper()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("message %d (%v) is older than message %d (%v)", i, msgs[i].CreatedAt, i-1, msgs[i-1].CreatedAt)
		}
	}
}
