package chat

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guilhermegouw/bioexplorer/internal/events"
	"github.com/guilhermegouw/bioexplorer/internal/message"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
	"github.com/guilhermegouw/bioexplorer/internal/query"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/storage"
)

var testNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

type queryCall struct {
	text string
	role string
}

// fakeQuerier answers every query with answer/err. When block is set, Query
// signals started and waits for block to close.
type fakeQuerier struct {
	mu      sync.Mutex
	calls   []queryCall
	answer  string
	err     error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeQuerier) Query(_ context.Context, text, r string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, queryCall{text: text, role: r})
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return f.answer, f.err
}

func (f *fakeQuerier) Calls() []queryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]queryCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestController(t *testing.T, medium storage.Medium, q Querier, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	c := New(session.NewStore(medium), q, opts...)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func mustSession(t *testing.T, c *Controller, id string) *session.Session {
	t.Helper()
	s, ok := c.Session(id)
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	return s
}

func drain(ch <-chan pubsub.Event[events.SessionEvent]) []events.SessionEvent {
	var out []events.SessionEvent
	for {
		select {
		case e := <-ch:
			out = append(out, e.Payload)
		default:
			return out
		}
	}
}

func TestSendMessage_Success(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	q := &fakeQuerier{answer: "**Bone loss** of 1-2% per month."}
	c := newTestController(t, medium, q)

	ex, err := c.SendMessage(ctx, "  What happens to bones in space?  ", role.Scientist)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if ex.Failed() || ex.Dropped || ex.PersistErr != nil {
		t.Fatalf("unexpected exchange: %+v", ex)
	}
	if c.InFlight() {
		t.Error("InFlight() = true after SendMessage returned")
	}

	s := mustSession(t, c, ex.SessionID)
	if ex.SessionID != c.ActiveID() {
		t.Errorf("exchange session %s is not active %s", ex.SessionID, c.ActiveID())
	}
	if len(s.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(s.Messages))
	}
	if s.Messages[0].Role != message.RoleUser || s.Messages[0].Content != "What happens to bones in space?" {
		t.Errorf("user message = %+v", s.Messages[0])
	}
	if s.Messages[1].Role != message.RoleAssistant || s.Messages[1].Content != q.answer {
		t.Errorf("assistant message = %+v", s.Messages[1])
	}
	if s.Title != "Scientist 03/14/25" || s.TitleState != session.AutoTitled {
		t.Errorf("title = %q (%v), want auto title", s.Title, s.TitleState)
	}

	calls := q.Calls()
	if len(calls) != 1 || calls[0].role != "scientist" || calls[0].text != "What happens to bones in space?" {
		t.Errorf("querier calls = %+v", calls)
	}

	reloaded := newTestController(t, medium, q)
	if got := reloaded.DerivedMessages(); len(got) != 2 || got[1].Content != q.answer {
		t.Errorf("reloaded messages = %+v", got)
	}
	if last, ok := reloaded.LastAssistantMessage(); !ok || last.Content != q.answer {
		t.Errorf("LastAssistantMessage() = %q, %v", last.Content, ok)
	}
}

func TestSendMessage_UnreachableBackend(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/query"
	srv.Close()

	client, err := query.New(endpoint, query.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("query.New() error = %v", err)
	}

	hub := pubsub.NewHub()
	defer hub.Shutdown()
	sub := hub.Session.Subscribe(ctx)

	c := newTestController(t, storage.NewMemoryMedium(), client, WithHub(hub), WithBackendPort(client.Port()))

	ex, err := c.SendMessage(ctx, "Is anyone there?", role.Student)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if !ex.Failed() || !query.IsUnreachable(ex.Err) {
		t.Errorf("exchange error = %v, want unreachable", ex.Err)
	}
	if c.InFlight() {
		t.Error("InFlight() = true after failed send")
	}

	msgs := c.DerivedMessages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	want := ErrorReply(client.Port())
	if msgs[1].Role != message.RoleAssistant || msgs[1].Content != want {
		t.Errorf("reply = %q, want %q", msgs[1].Content, want)
	}
	if !strings.Contains(want, "port "+client.Port()+".") {
		t.Errorf("error reply should name the backend port: %q", want)
	}

	var failed bool
	for _, e := range drain(sub) {
		if e.Type == events.SessionEventExchangeFailed && e.SessionID == ex.SessionID {
			failed = true
		}
	}
	if !failed {
		t.Error("expected an exchange_failed event")
	}
}

func TestSendMessage_Rejected(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{answer: "unused"}
	c := newTestController(t, storage.NewMemoryMedium(), q)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.SendMessage(ctx, text, role.Scientist); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("SendMessage(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}
	if len(c.Sessions()) != 0 {
		t.Error("a rejected send must not create a session")
	}
	if len(q.Calls()) != 0 {
		t.Error("a rejected send must not reach the backend")
	}
}

func TestSendMessage_SwitchDuringFlight(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{
		answer:  "Plants grow toward light even in orbit.",
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	c := newTestController(t, storage.NewMemoryMedium(), q)

	a := c.CreateSession(ctx)

	done := make(chan Exchange, 1)
	go func() {
		ex, err := c.SendMessage(ctx, "How do plants grow in space?", role.Scientist)
		if err != nil {
			t.Errorf("SendMessage() error = %v", err)
		}
		done <- ex
	}()

	<-q.started
	if !c.InFlight() {
		t.Error("InFlight() = false while waiting for the backend")
	}

	b := c.CreateSession(ctx)
	if c.ActiveID() != b {
		t.Fatalf("ActiveID() = %s, want %s", c.ActiveID(), b)
	}
	if _, err := c.SendMessage(ctx, "second question", role.Scientist); !errors.Is(err, ErrSendInFlight) {
		t.Errorf("concurrent SendMessage() error = %v, want ErrSendInFlight", err)
	}

	close(q.block)
	ex := <-done

	if ex.SessionID != a {
		t.Errorf("reply went to %s, want %s", ex.SessionID, a)
	}
	if got := mustSession(t, c, a).Messages; len(got) != 2 || got[1].Content != q.answer {
		t.Errorf("session A messages = %+v", got)
	}
	if got := mustSession(t, c, b).Messages; len(got) != 0 {
		t.Errorf("session B should stay empty, got %+v", got)
	}
	if c.ActiveID() != b {
		t.Errorf("ActiveID() = %s, want B to stay active", c.ActiveID())
	}
	if c.InFlight() {
		t.Error("InFlight() = true after the reply settled")
	}
}

func TestSendMessage_SessionDeletedDuringFlight(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{
		answer:  "late reply",
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	c := newTestController(t, storage.NewMemoryMedium(), q)

	done := make(chan Exchange, 1)
	go func() {
		ex, _ := c.SendMessage(ctx, "question", role.Scientist)
		done <- ex
	}()

	<-q.started
	target := c.ActiveID()
	if !c.DeleteSession(ctx, target) {
		t.Fatal("DeleteSession() = false")
	}

	close(q.block)
	ex := <-done

	if !ex.Dropped {
		t.Error("expected the reply to be dropped")
	}
	for _, s := range c.Sessions() {
		if len(s.Messages) != 0 {
			t.Errorf("session %s received messages %+v", s.ID, s.Messages)
		}
	}
}

func TestGreetingNeverPersisted(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	c := newTestController(t, medium, &fakeQuerier{}, WithRole(role.Manager))

	msgs := c.DerivedMessages()
	if len(msgs) != 1 || !IsGreeting(msgs[0]) {
		t.Fatalf("DerivedMessages() = %+v, want one greeting", msgs)
	}
	if msgs[0].Content != role.MustGet(role.Manager).Greeting {
		t.Errorf("greeting = %q, want manager greeting", msgs[0].Content)
	}
	if got := c.DerivedSuggestedPrompts(); len(got) != len(role.MustGet(role.Manager).SuggestedPrompts) {
		t.Errorf("DerivedSuggestedPrompts() = %v", got)
	}
	if _, err := medium.Get(ctx, session.DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("nothing should be persisted yet, Get() error = %v", err)
	}

	c.CreateSession(ctx)
	data, err := medium.Get(ctx, session.DefaultKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	stored, err := session.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(stored) != 1 || len(stored[0].Messages) != 0 {
		t.Errorf("stored sessions = %+v, want one empty session", stored)
	}
	if strings.Contains(string(data), role.MustGet(role.Manager).Greeting) {
		t.Error("greeting text leaked into the persisted record")
	}
}

func TestTitlesAcrossRoles(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	c := newTestController(t, medium, &fakeQuerier{answer: "ok"})

	first, err := c.SendMessage(ctx, "bone density in microgravity", role.Scientist)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := mustSession(t, c, first.SessionID).Title; got != "Scientist 03/14/25" {
		t.Errorf("first title = %q", got)
	}

	second := c.CreateSession(ctx)
	if _, err := c.SendMessage(ctx, "what is a space station?", role.Student); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := mustSession(t, c, second).Title; got != "Student 03/14/25" {
		t.Errorf("second title = %q", got)
	}

	if !c.RenameSession(ctx, first.SessionID, "Bone density notes") {
		t.Fatal("RenameSession() = false")
	}
	c.SwitchSession(ctx, first.SessionID)
	if _, err := c.SendMessage(ctx, "and muscle?", role.Student); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := mustSession(t, c, first.SessionID).Title; got != "Bone density notes" {
		t.Errorf("renamed title changed to %q", got)
	}
	if got := mustSession(t, c, second).Title; got != "Student 03/14/25" {
		t.Errorf("second title changed to %q", got)
	}

	reloaded := newTestController(t, medium, &fakeQuerier{})
	sessions := reloaded.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("reloaded %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != second || sessions[0].TitleState != session.AutoTitled {
		t.Errorf("sessions[0] = %s %q (%v)", sessions[0].ID, sessions[0].Title, sessions[0].TitleState)
	}
	if sessions[1].Title != "Bone density notes" || sessions[1].TitleState != session.UserTitled {
		t.Errorf("sessions[1] = %q (%v)", sessions[1].Title, sessions[1].TitleState)
	}
	if reloaded.ActiveID() != second {
		t.Errorf("ActiveID() after load = %s, want most recent %s", reloaded.ActiveID(), second)
	}
}

func TestRenameSession(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{answer: "ok"})
	id := c.CreateSession(ctx)

	t.Run("blank title is a no-op", func(t *testing.T) {
		for _, title := range []string{"", "  ", "\t"} {
			if c.RenameSession(ctx, id, title) {
				t.Errorf("RenameSession(%q) = true", title)
			}
		}
		s := mustSession(t, c, id)
		if s.Title != session.UntitledTitle || s.TitleState != session.Untitled {
			t.Errorf("title = %q (%v), want untouched", s.Title, s.TitleState)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if c.RenameSession(ctx, "missing", "Title") {
			t.Error("RenameSession(missing) = true")
		}
	})

	t.Run("user title survives first message", func(t *testing.T) {
		if !c.RenameSession(ctx, id, "  My notes ") {
			t.Fatal("RenameSession() = false")
		}
		if _, err := c.SendMessage(ctx, "hello", role.Architect); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		s := mustSession(t, c, id)
		if s.Title != "My notes" || s.TitleState != session.UserTitled {
			t.Errorf("title = %q (%v), want sticky user title", s.Title, s.TitleState)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the only session creates a fresh one", func(t *testing.T) {
		c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
		id := c.CreateSession(ctx)

		if !c.DeleteSession(ctx, id) {
			t.Fatal("DeleteSession() = false")
		}
		active := c.ActiveID()
		if active == "" || active == id {
			t.Fatalf("ActiveID() = %q, want a fresh session", active)
		}
		if s := mustSession(t, c, active); !s.IsEmpty() || s.Title != session.UntitledTitle {
			t.Errorf("fresh session = %+v", s)
		}
		if len(c.Sessions()) != 1 {
			t.Errorf("Sessions() = %d, want 1", len(c.Sessions()))
		}
	})

	t.Run("deleting the active session activates the most recent", func(t *testing.T) {
		c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
		older := c.CreateSession(ctx)
		newer := c.CreateSession(ctx)
		c.SwitchSession(ctx, older)
		third := c.CreateSession(ctx)

		c.DeleteSession(ctx, third)
		if c.ActiveID() != newer {
			t.Errorf("ActiveID() = %s, want most recent %s", c.ActiveID(), newer)
		}
	})

	t.Run("deleting another session keeps the selection", func(t *testing.T) {
		c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
		other := c.CreateSession(ctx)
		active := c.CreateSession(ctx)

		c.DeleteSession(ctx, other)
		if c.ActiveID() != active {
			t.Errorf("ActiveID() = %s, want %s", c.ActiveID(), active)
		}
		if len(c.Sessions()) != 1 {
			t.Errorf("Sessions() = %d, want 1", len(c.Sessions()))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
		c.CreateSession(ctx)
		if c.DeleteSession(ctx, "missing") {
			t.Error("DeleteSession(missing) = true")
		}
	})

	t.Run("deletion is persisted", func(t *testing.T) {
		medium := storage.NewMemoryMedium()
		c := newTestController(t, medium, &fakeQuerier{})
		keep := c.CreateSession(ctx)
		gone := c.CreateSession(ctx)
		c.DeleteSession(ctx, gone)

		reloaded := newTestController(t, medium, &fakeQuerier{})
		sessions := reloaded.Sessions()
		if len(sessions) != 1 || sessions[0].ID != keep {
			t.Errorf("reloaded sessions = %+v", sessions)
		}
	})
}

func TestActiveAlwaysValid(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
	c.CreateSession(ctx)

	rng := rand.New(rand.NewSource(7))
	for i := range 200 {
		sessions := c.Sessions()
		pick := sessions[rng.Intn(len(sessions))].ID

		switch rng.Intn(3) {
		case 0:
			c.CreateSession(ctx)
		case 1:
			c.DeleteSession(ctx, pick)
		case 2:
			c.SwitchSession(ctx, pick)
		}

		active := c.ActiveID()
		if active == "" {
			t.Fatalf("step %d: no active session", i)
		}
		if _, ok := c.Session(active); !ok {
			t.Fatalf("step %d: active %s is not in the collection", i, active)
		}
	}
}

func TestSwitchSessionUnknown(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
	id := c.CreateSession(ctx)

	if c.SwitchSession(ctx, "missing") {
		t.Error("SwitchSession(missing) = true")
	}
	if c.ActiveID() != id {
		t.Errorf("ActiveID() = %s, want %s", c.ActiveID(), id)
	}
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium(storage.WithQuota(256))
	c := newTestController(t, medium, &fakeQuerier{answer: strings.Repeat("long answer ", 40)})

	ex, err := c.SendMessage(ctx, "tell me everything", role.Scientist)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if !errors.Is(ex.PersistErr, session.ErrQuotaExceeded) {
		t.Errorf("PersistErr = %v, want ErrQuotaExceeded", ex.PersistErr)
	}
	if !errors.Is(c.PersistErr(), session.ErrQuotaExceeded) {
		t.Errorf("PersistErr() = %v, want ErrQuotaExceeded", c.PersistErr())
	}
	if got := c.DerivedMessages(); len(got) != 2 {
		t.Errorf("memory lost messages after quota error: %d", len(got))
	}

	if err := c.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if len(c.Sessions()) != 0 || c.PersistErr() != nil {
		t.Errorf("ClearAll() left %d sessions, err %v", len(c.Sessions()), c.PersistErr())
	}
	if _, err := medium.Get(ctx, session.DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ClearAll() should remove the record, Get() error = %v", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	if err := medium.Put(ctx, session.DefaultKey, []byte("not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	c := New(session.NewStore(medium), &fakeQuerier{})
	err := c.Load(ctx)

	var corrupt *session.CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load() error = %v, want *session.CorruptError", err)
	}
	if len(c.Sessions()) != 0 || c.ActiveID() != "" {
		t.Error("corrupt load should leave an empty collection")
	}
	if msgs := c.DerivedMessages(); len(msgs) != 1 || !IsGreeting(msgs[0]) {
		t.Errorf("DerivedMessages() = %+v, want greeting", msgs)
	}
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{answer: "ok"})

	c.SetRole(role.Architect)
	if c.Role() != role.Architect {
		t.Errorf("Role() = %q", c.Role())
	}
	if got := c.DerivedMessages()[0].Content; got != role.MustGet(role.Architect).Greeting {
		t.Errorf("greeting = %q, want architect greeting", got)
	}

	if _, err := c.SendMessage(ctx, "habitat design", c.Role()); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	c.SetRole(role.Student)
	if c.DerivedSuggestedPrompts() != nil {
		t.Error("prompts should be hidden once the chat has messages")
	}
	if got := mustSession(t, c, c.ActiveID()).Title; got != "Architect 03/14/25" {
		t.Errorf("title = %q, role change must not retitle", got)
	}

	c.SetRole("pilot")
	if c.Role() != role.Default {
		t.Errorf("unknown role should fall back to default, got %q", c.Role())
	}
}

func TestEditBuffer(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, storage.NewMemoryMedium(), &fakeQuerier{})
	id := c.CreateSession(ctx)

	if c.BeginEdit("missing") {
		t.Error("BeginEdit(missing) = true")
	}

	if !c.BeginEdit(id) {
		t.Fatal("BeginEdit() = false")
	}
	if gotID, buf := c.EditBuffer(); gotID != id || buf != session.UntitledTitle {
		t.Errorf("EditBuffer() = %q, %q", gotID, buf)
	}

	c.SetEditBuffer("Radiation")
	if !c.CommitEdit(ctx) {
		t.Fatal("CommitEdit() = false")
	}
	if got := mustSession(t, c, id).Title; got != "Radiation" {
		t.Errorf("title = %q, want Radiation", got)
	}
	if gotID, _ := c.EditBuffer(); gotID != "" {
		t.Error("CommitEdit() should end editing")
	}

	c.BeginEdit(id)
	c.SetEditBuffer("   ")
	if c.CommitEdit(ctx) {
		t.Error("CommitEdit() with blank title = true")
	}

	c.BeginEdit(id)
	c.SetEditBuffer("Discarded")
	c.CancelEdit()
	if got := mustSession(t, c, id).Title; got != "Radiation" {
		t.Errorf("title = %q after CancelEdit()", got)
	}

	c.SetInput("draft question")
	if c.Input() != "draft question" {
		t.Errorf("Input() = %q", c.Input())
	}
}
