package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"

	"github.com/guilhermegouw/bioexplorer/internal/chat"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/storage"
	"github.com/guilhermegouw/bioexplorer/internal/tui/markdown"
)

type stubQuerier struct {
	answer string
	err    error
}

func (s stubQuerier) Query(_ context.Context, _, _ string) (string, error) {
	return s.answer, s.err
}

func newTestREPL(t *testing.T, q chat.Querier) (*repl, *bytes.Buffer, *[]string) {
	t.Helper()
	color.NoColor = true

	ctl := chat.New(session.NewStore(storage.NewMemoryMedium()), q)
	if err := ctl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	var copied []string
	r := &repl{
		a:   &app{ctl: ctl},
		out: &out,
		md:  markdown.New(),
		copy: func(s string) error {
			copied = append(copied, s)
			return nil
		},
	}
	return r, &out, &copied
}

func TestREPL(t *testing.T) {
	ctx := context.Background()
	r, out, copied := newTestREPL(t, stubQuerier{answer: "Plants grow **slower** in microgravity."})
	ctl := r.a.ctl

	t.Run("question", func(t *testing.T) {
		r.handle(ctx, "how do plants grow in space?")
		if !strings.Contains(ansi.Strip(out.String()), "slower") {
			t.Errorf("output = %q, want the answer", out.String())
		}
		if len(ctl.Sessions()) != 1 {
			t.Fatalf("len(Sessions()) = %d, want 1", len(ctl.Sessions()))
		}
	})

	t.Run("rename", func(t *testing.T) {
		r.handle(ctx, "/rename Plant biology")
		s, _ := ctl.Session(ctl.ActiveID())
		if s.Title != "Plant biology" {
			t.Errorf("title = %q", s.Title)
		}
	})

	t.Run("copy", func(t *testing.T) {
		r.handle(ctx, "/copy")
		if len(*copied) != 1 || !strings.Contains((*copied)[0], "slower") {
			t.Errorf("copied = %v", *copied)
		}
	})

	t.Run("new and switch by number", func(t *testing.T) {
		first := ctl.ActiveID()
		r.handle(ctx, "/new")
		if ctl.ActiveID() == first {
			t.Fatal("/new should open a new chat")
		}
		r.handle(ctx, "/switch 2")
		if ctl.ActiveID() != first {
			t.Errorf("ActiveID() = %q, want %q", ctl.ActiveID(), first)
		}
	})

	t.Run("role", func(t *testing.T) {
		r.handle(ctx, "/role student")
		if ctl.Role() != role.Student {
			t.Errorf("Role() = %q, want student", ctl.Role())
		}
		out.Reset()
		r.handle(ctx, "/role pilot")
		if !strings.Contains(out.String(), "unknown role") {
			t.Errorf("output = %q, want an unknown role error", out.String())
		}
	})

	t.Run("delete", func(t *testing.T) {
		before := len(ctl.Sessions())
		r.handle(ctx, "/delete")
		if got := len(ctl.Sessions()); got != before-1 {
			t.Errorf("len(Sessions()) = %d, want %d", got, before-1)
		}
	})

	t.Run("clear", func(t *testing.T) {
		r.handle(ctx, "/clear")
		if len(ctl.Sessions()) != 0 {
			t.Errorf("len(Sessions()) = %d, want 0", len(ctl.Sessions()))
		}
	})

	t.Run("quit", func(t *testing.T) {
		if !r.handle(ctx, "/quit") {
			t.Error("/quit should end the loop")
		}
		if r.handle(ctx, "/unknown") {
			t.Error("unknown commands should not end the loop")
		}
	})
}

func TestREPL_FailedQuery(t *testing.T) {
	r, out, _ := newTestREPL(t, stubQuerier{err: errors.New("connection refused")})

	r.handle(context.Background(), "hello")
	if !strings.Contains(ansi.Strip(out.String()), "Sorry") {
		t.Errorf("output = %q, want the error reply", out.String())
	}
	last, ok := r.a.ctl.LastAssistantMessage()
	if !ok || last.Content != chat.ErrorReply(chat.DefaultBackendPort) {
		t.Errorf("last reply = %q, want the fixed error reply", last.Content)
	}
}

func TestREPL_Resolve(t *testing.T) {
	r, _, _ := newTestREPL(t, stubQuerier{})
	ctx := context.Background()
	a := r.a.ctl.CreateSession(ctx)
	b := r.a.ctl.CreateSession(ctx)

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "number", arg: "1", want: b},
		{name: "full id", arg: a, want: a},
		{name: "prefix", arg: a[:8], want: a},
		{name: "out of range", arg: "9", want: ""},
		{name: "empty", arg: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.resolve(tt.arg); got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{key: "user.email", value: "ada@example.com"},
		{key: "user.email", value: "not an email", wantErr: true},
		{key: "default_role", value: "Manager"},
		{key: "default_role", value: "pilot", wantErr: true},
		{key: "storage.backend", value: "file"},
		{key: "storage.backend", value: "s3", wantErr: true},
		{key: "endpoint", value: "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := validateSetting(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSetting() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWarnPersist(t *testing.T) {
	var buf bytes.Buffer

	warnPersist(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil error wrote %q", buf.String())
	}

	warnPersist(&buf, session.ErrQuotaExceeded)
	if !strings.Contains(buf.String(), session.QuotaHint) {
		t.Errorf("output = %q, want quota hint", buf.String())
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "bioexplorer ") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRolesCmd(t *testing.T) {
	color.NoColor = true
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"roles"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range role.Names() {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("output missing role %q", name)
		}
	}
}
