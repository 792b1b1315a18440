package styles

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "#5eb5f7", want: "#5eb5f7"},
		{in: "#000000", want: "#000000"},
		{in: "not-a-color", want: "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(ParseHex(tt.in)); got != tt.want {
				t.Errorf("Hex(ParseHex(%q)) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	if got := CurrentTheme().Name; got != "default" {
		t.Errorf("CurrentTheme().Name = %q, want default", got)
	}

	if !m.SetTheme("light") {
		t.Fatal("SetTheme(light) = false")
	}
	if got := CurrentTheme().Name; got != "light" {
		t.Errorf("CurrentTheme().Name = %q, want light", got)
	}

	if m.SetTheme("neon") {
		t.Error("SetTheme(neon) should fail")
	}
	_ = m.SetTheme("default")
}

func TestStylesCached(t *testing.T) {
	th := NewDefaultTheme()
	if th.S() != th.S() {
		t.Error("S() should return the same styles on every call")
	}
}
