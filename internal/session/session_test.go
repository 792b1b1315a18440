package session

import (
	"testing"
	"time"

	"github.com/guilhermegouw/bioexplorer/internal/message"
)

var testTime = time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)

func TestNew(t *testing.T) {
	s := New(testTime)

	if s.ID == "" {
		t.Error("ID should not be empty")
	}
	if s.Title != UntitledTitle {
		t.Errorf("Title = %q, want %q", s.Title, UntitledTitle)
	}
	if s.TitleState != Untitled {
		t.Errorf("TitleState = %v, want untitled", s.TitleState)
	}
	if !s.IsEmpty() {
		t.Error("new session should be empty")
	}
	if !s.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, testTime)
	}
	if New(testTime).ID == s.ID {
		t.Error("sessions should get unique IDs")
	}
}

func TestTitleTransitions(t *testing.T) {
	t.Run("untitled to auto titled", func(t *testing.T) {
		s := New(testTime)
		if !s.ApplyAutoTitle("Scientist") {
			t.Fatal("ApplyAutoTitle() = false, want true")
		}
		if s.Title != "Scientist 03/14/25" {
			t.Errorf("Title = %q, want %q", s.Title, "Scientist 03/14/25")
		}
		if s.TitleState != AutoTitled {
			t.Errorf("TitleState = %v, want auto", s.TitleState)
		}
	})

	t.Run("auto title fires once", func(t *testing.T) {
		s := New(testTime)
		s.ApplyAutoTitle("Scientist")
		if s.ApplyAutoTitle("Student") {
			t.Error("second ApplyAutoTitle() = true, want false")
		}
		if s.Title != "Scientist 03/14/25" {
			t.Errorf("Title = %q, want unchanged", s.Title)
		}
	})

	t.Run("rename makes title sticky", func(t *testing.T) {
		s := New(testTime)
		if !s.Rename("  Bone density notes  ") {
			t.Fatal("Rename() = false, want true")
		}
		if s.Title != "Bone density notes" {
			t.Errorf("Title = %q, want trimmed title", s.Title)
		}
		if s.ApplyAutoTitle("Scientist") {
			t.Error("ApplyAutoTitle() after rename = true, want false")
		}
		if s.TitleState != UserTitled {
			t.Errorf("TitleState = %v, want user", s.TitleState)
		}
	})

	t.Run("auto titled can be renamed", func(t *testing.T) {
		s := New(testTime)
		s.ApplyAutoTitle("Manager")
		if !s.Rename("Portfolio") {
			t.Fatal("Rename() = false, want true")
		}
		if s.TitleState != UserTitled {
			t.Errorf("TitleState = %v, want user", s.TitleState)
		}
	})

	t.Run("blank rename is a no-op", func(t *testing.T) {
		s := New(testTime)
		s.ApplyAutoTitle("Manager")
		for _, title := range []string{"", "   ", "\t\n"} {
			if s.Rename(title) {
				t.Errorf("Rename(%q) = true, want false", title)
			}
		}
		if s.Title != "Manager 03/14/25" || s.TitleState != AutoTitled {
			t.Errorf("title changed by blank rename: %q (%v)", s.Title, s.TitleState)
		}
	})
}

func TestClone(t *testing.T) {
	s := New(testTime)
	s.Append(message.NewUser("hello"))

	c := s.Clone()
	c.Append(message.NewAssistant("hi"))
	c.Messages[0].Content = "changed"

	if len(s.Messages) != 1 {
		t.Errorf("original has %d messages, want 1", len(s.Messages))
	}
	if s.Messages[0].Content != "hello" {
		t.Errorf("original message mutated: %q", s.Messages[0].Content)
	}
}

func TestLastAssistantMessage(t *testing.T) {
	s := New(testTime)
	if _, ok := s.LastAssistantMessage(); ok {
		t.Error("empty session should have no assistant message")
	}

	s.Append(message.NewUser("q1"))
	s.Append(message.NewAssistant("a1"))
	s.Append(message.NewUser("q2"))

	got, ok := s.LastAssistantMessage()
	if !ok || got.Content != "a1" {
		t.Errorf("LastAssistantMessage() = %q, %v; want a1, true", got.Content, ok)
	}
	if s.Preview() != "q1" {
		t.Errorf("Preview() = %q, want q1", s.Preview())
	}
}
