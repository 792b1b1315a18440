// Package chat implements the chat session controller: session lifecycle,
// derived display state, and the send-message workflow.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/events"
	"github.com/guilhermegouw/bioexplorer/internal/message"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
)

// DefaultBackendPort is the port named in the error reply when none is
// configured.
const DefaultBackendPort = "2121"

var (
	// ErrEmptyMessage is returned by SendMessage for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned by SendMessage while another send is
	// waiting for its reply.
	ErrSendInFlight = errors.New("a message is already being sent")
)

// ErrorReply is the assistant text appended when a query fails.
func ErrorReply(port string) string {
	return "Sorry, I encountered an error while processing your request. " +
		"Please make sure the backend is running on port " + port + "."
}

// Querier answers a question under a role.
type Querier interface {
	Query(ctx context.Context, text, role string) (string, error)
}

// Exchange is the outcome of one SendMessage call.
type Exchange struct {
	SessionID string
	User      message.Message
	Reply     message.Message

	// Err is the query failure, if any. The reply then carries the fixed
	// error text.
	Err error

	// PersistErr is the outcome of the last save during the exchange.
	PersistErr error

	// Dropped is set when the session was deleted before the reply arrived.
	Dropped bool
}

// Failed reports whether the backend could not answer.
func (e Exchange) Failed() bool {
	return e.Err != nil
}

// Controller owns session lifecycle and the transient UI state around it.
// All methods are safe for concurrent use.
type Controller struct { //nolint:govet // fieldalignment: preserving logical field order
	store   *session.Store
	querier Querier
	hub     *pubsub.Hub
	now     func() time.Time
	port    string

	mu         sync.Mutex
	role       role.Key
	inFlight   bool
	input      string
	editID     string
	editBuffer string
	persistErr error
}

// Option configures a Controller.
type Option func(*Controller)

// WithHub publishes lifecycle events on hub.
func WithHub(hub *pubsub.Hub) Option {
	return func(c *Controller) {
		c.hub = hub
	}
}

// WithClock overrides the clock used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithRole sets the initial role.
func WithRole(r role.Key) Option {
	return func(c *Controller) {
		c.role = role.MustGet(r).Key
	}
}

// WithBackendPort sets the port named in the error reply.
func WithBackendPort(port string) Option {
	return func(c *Controller) {
		if port != "" {
			c.port = port
		}
	}
}

// New creates a controller over store. Call Load before use to restore
// persisted sessions.
func New(store *session.Store, querier Querier, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		querier: querier,
		now:     time.Now,
		port:    DefaultBackendPort,
		role:    role.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load restores persisted sessions and activates the most recent one.
// A corrupt record is discarded; the returned *session.CorruptError is a
// diagnostic and the controller is usable either way.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Load(ctx)
	if err != nil {
		c.publishSession(pubsub.EventFailed, events.NewPersistFailedEvent("", err))
	}
	if sessions := c.store.Sessions(); len(sessions) > 0 {
		c.store.SetActive(sessions[0].ID)
	}
	return err
}

// CreateSession starts a new empty chat, makes it active, and returns its id.
func (c *Controller) CreateSession(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.createLocked()
	c.persistLocked(ctx, id)
	return id
}

func (c *Controller) createLocked() string {
	s := session.New(c.now())
	c.store.Insert(s)
	c.store.SetActive(s.ID)
	debug.Event("chat", "create", s.ID)
	c.publishSession(pubsub.EventCreated, events.NewSessionCreatedEvent(s.ID, s.Title))
	return s.ID
}

// SwitchSession activates the session with the given id. Unknown ids are
// ignored. It reports whether the active session changed.
func (c *Controller) SwitchSession(_ context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.store.Get(id)
	if !ok {
		return false
	}
	c.store.SetActive(id)
	c.publishSession(pubsub.EventUpdated, events.NewSessionSwitchedEvent(id, s.Title))
	return true
}

// RenameSession gives a session an explicit title. A blank title or an
// unknown id is a no-op. Once renamed, a session is never auto-titled.
func (c *Controller) RenameSession(ctx context.Context, id, title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renameLocked(ctx, id, title)
}

func (c *Controller) renameLocked(ctx context.Context, id, title string) bool {
	var renamed bool
	var newTitle string
	c.store.Update(id, func(s *session.Session) {
		renamed = s.Rename(title)
		newTitle = s.Title
	})
	if !renamed {
		return false
	}
	c.publishSession(pubsub.EventUpdated, events.NewSessionRenamedEvent(id, newTitle))
	c.persistLocked(ctx, id)
	return true
}

// DeleteSession removes a session. If it was active, the most recent
// remaining session becomes active, or a fresh one is created when none
// remain. Deleting another session leaves the selection alone.
func (c *Controller) DeleteSession(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.removeLocked(id) {
		return false
	}
	c.ensureActiveLocked()
	c.persistLocked(ctx, "")
	return true
}

func (c *Controller) removeLocked(id string) bool {
	if !c.store.Remove(id) {
		return false
	}
	if c.editID == id {
		c.editID, c.editBuffer = "", ""
	}
	debug.Event("chat", "delete", id)
	c.publishSession(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
	return true
}

// ensureActiveLocked repairs a dangling selection: the most recent session
// becomes active, or a new one is created if the collection is empty.
func (c *Controller) ensureActiveLocked() {
	if _, ok := c.store.Active(); ok {
		return
	}
	if sessions := c.store.Sessions(); len(sessions) > 0 {
		c.store.SetActive(sessions[0].ID)
		c.publishSession(pubsub.EventUpdated, events.NewSessionSwitchedEvent(sessions[0].ID, sessions[0].Title))
		return
	}
	c.createLocked()
}

// ClearAll deletes every session and the persisted history. This is the
// way out of a full storage medium.
func (c *Controller) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.store.Sessions() {
		c.publishSession(pubsub.EventDeleted, events.NewSessionDeletedEvent(s.ID))
	}
	c.editID, c.editBuffer = "", ""
	if err := c.store.Purge(ctx); err != nil {
		c.persistErr = err
		c.publishSession(pubsub.EventFailed, events.NewPersistFailedEvent("", err))
		return err
	}
	c.persistErr = nil
	return nil
}

// SendMessage appends text to the active chat, creating one if needed, and
// asks the backend for a reply under r.
//
// The user message is saved before the request is made. The reply, or the
// fixed error text when the request fails, is appended to the chat that
// was active at send time, even if the user has switched since. Query
// failures are reported in Exchange.Err, not as an error; the returned
// error is only ErrEmptyMessage or ErrSendInFlight.
func (c *Controller) SendMessage(ctx context.Context, text string, r role.Key) (Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, ErrEmptyMessage
	}
	r = role.MustGet(r).Key

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Exchange{}, ErrSendInFlight
	}

	if _, ok := c.store.Active(); !ok {
		c.createLocked()
	}
	target := c.store.ActiveID()
	ex := Exchange{SessionID: target, User: message.NewUser(text)}

	var titled string
	short := role.MustGet(r).ShortTitle
	c.store.Update(target, func(s *session.Session) {
		s.Append(ex.User)
		if s.ApplyAutoTitle(short) {
			titled = s.Title
		}
	})
	c.publishSession(pubsub.EventUpdated, events.NewSessionMessageAddedEvent(target, string(message.RoleUser), text))
	if titled != "" {
		c.publishSession(pubsub.EventUpdated, events.NewSessionRenamedEvent(target, titled))
	}
	ex.PersistErr = c.persistLocked(ctx, target)

	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	c.publishExchange(pubsub.EventStarted, events.NewExchangeStartedEvent(target, string(r)))
	start := time.Now()
	answer, err := c.querier.Query(ctx, text, string(r))
	c.publishExchange(pubsub.EventSettled, events.NewExchangeSettledEvent(target, string(r), time.Since(start), err))

	if err != nil {
		debug.Error("chat", err, "query for session "+target)
		answer = ErrorReply(c.port)
		ex.Err = err
	}
	ex.Reply = message.NewAssistant(answer)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.publishSession(pubsub.EventFailed, events.NewExchangeFailedEvent(target, err))
	}
	if !c.store.Update(target, func(s *session.Session) { s.Append(ex.Reply) }) {
		debug.Event("chat", "reply_dropped", fmt.Sprintf("session %s deleted during send", target))
		ex.Dropped = true
		return ex, nil
	}
	c.publishSession(pubsub.EventUpdated, events.NewSessionMessageAddedEvent(target, string(message.RoleAssistant), answer))
	ex.PersistErr = c.persistLocked(ctx, target)
	return ex, nil
}

// persistLocked saves the collection. Failures leave memory untouched and
// are published and remembered for PersistErr.
func (c *Controller) persistLocked(ctx context.Context, sessionID string) error {
	// The save must land even when the caller's request context is done.
	err := c.store.Save(context.WithoutCancel(ctx))
	c.persistErr = err
	if err != nil {
		c.publishSession(pubsub.EventFailed, events.NewPersistFailedEvent(sessionID, err))
	}
	return err
}

// PersistErr returns the outcome of the most recent save.
func (c *Controller) PersistErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistErr
}

// DerivedMessages returns what the active chat displays.
func (c *Controller) DerivedMessages() []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, _ := c.store.Active()
	return DeriveView(s, c.role)
}

// DerivedSuggestedPrompts returns the prompts offered for the active chat.
func (c *Controller) DerivedSuggestedPrompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, _ := c.store.Active()
	return DerivePrompts(s, c.role)
}

// SetRole changes the current role. It affects display and future sends
// only; stored chats are not touched.
func (c *Controller) SetRole(r role.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = role.MustGet(r).Key
}

// Role returns the current role.
func (c *Controller) Role() role.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// InFlight reports whether a send is waiting for its reply.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Sessions returns copies of every chat, most recent first.
func (c *Controller) Sessions() []*session.Session {
	return c.store.Sessions()
}

// Session returns a copy of the chat with the given id.
func (c *Controller) Session(id string) (*session.Session, bool) {
	return c.store.Get(id)
}

// ActiveID returns the id of the active chat, or "" if there is none.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.store.Active()
	if !ok {
		return ""
	}
	return s.ID
}

// LastAssistantMessage returns the newest reply in the active chat.
func (c *Controller) LastAssistantMessage() (message.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.store.Active()
	if !ok {
		return message.Message{}, false
	}
	return s.LastAssistantMessage()
}

// Input returns the unsent input buffer.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the unsent input buffer.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// BeginEdit starts renaming a chat, seeding the buffer with its title.
func (c *Controller) BeginEdit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.store.Get(id)
	if !ok {
		return false
	}
	c.editID = id
	c.editBuffer = s.Title
	return true
}

// EditBuffer returns the chat being renamed and the pending title.
func (c *Controller) EditBuffer() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editID, c.editBuffer
}

// SetEditBuffer replaces the pending title.
func (c *Controller) SetEditBuffer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editID != "" {
		c.editBuffer = text
	}
}

// CommitEdit applies the pending title and ends editing. A blank title
// leaves the chat unchanged.
func (c *Controller) CommitEdit(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, title := c.editID, c.editBuffer
	c.editID, c.editBuffer = "", ""
	if id == "" {
		return false
	}
	return c.renameLocked(ctx, id, title)
}

// CancelEdit discards the pending title.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editID, c.editBuffer = "", ""
}

func (c *Controller) publishSession(t pubsub.EventType, e events.SessionEvent) {
	if c.hub != nil {
		c.hub.Session.Publish(t, e)
	}
}

func (c *Controller) publishExchange(t pubsub.EventType, e events.ExchangeEvent) {
	if c.hub != nil {
		c.hub.Exchange.Publish(t, e)
	}
}
