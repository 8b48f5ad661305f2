package status

import (
	"os"
	"path/filepath"
	"testing"

	logx "randommotd/pkg/logx"
)

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A Minecraft Server", want: "A Minecraft Server"},
		{in: "\u00a7cRed", want: `\u00A7cRed`},
		{in: "Line1\nLine2", want: `Line1\nLine2`},
		{in: `back\slash`, want: `back\\slash`},
		{in: " lead", want: `\ lead`},
		{in: "emoji \U0001F600", want: `emoji \uD83D\uDE00`},
	}
	for _, tc := range tests {
		if got := EscapeValue(tc.in); got != tc.want {
			t.Fatalf("EscapeValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSetProperty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "replace existing",
			content: "#Minecraft server properties\nmotd=old\nmax-players=20\n",
			want:    "#Minecraft server properties\nmotd=new\nmax-players=20\n",
		},
		{
			name:    "append when missing",
			content: "max-players=20\n",
			want:    "max-players=20\nmotd=new\n",
		},
		{
			name:    "empty file",
			content: "",
			want:    "motd=new\n",
		},
		{
			name:    "commented key untouched",
			content: "#motd=commented\nmotd : spaced\n",
			want:    "#motd=commented\nmotd=new\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SetProperty(tc.content, "motd", "new"); got != tc.want {
				t.Fatalf("SetProperty() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPropertiesFileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	if err := os.WriteFile(path, []byte("level-name=world\nmotd=old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := NewPropertiesFile(PropertiesConfig{Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("NewPropertiesFile: %v", err)
	}
	p.SetStatus("\u00a7aWelcome\nback")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "level-name=world\nmotd=\\u00A7aWelcome\\nback\n"
	if string(b) != want {
		t.Fatalf("file = %q, want %q", b, want)
	}
	st, _ := os.Stat(path)
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", st.Mode().Perm())
	}
	if p.Writes() != 1 {
		t.Fatalf("Writes = %d, want 1", p.Writes())
	}
}

func TestPropertiesFileRateLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	p, err := NewPropertiesFile(PropertiesConfig{Path: path, MaxWritesPerSec: 0.001}, logx.Nop())
	if err != nil {
		t.Fatalf("NewPropertiesFile: %v", err)
	}
	p.SetStatus("first")
	p.SetStatus("second")

	if p.Writes() != 1 || p.Dropped() != 1 {
		t.Fatalf("writes=%d dropped=%d, want 1/1", p.Writes(), p.Dropped())
	}
	b, _ := os.ReadFile(path)
	if string(b) != "motd=first\n" {
		t.Fatalf("file = %q", b)
	}
}

func TestNewPropertiesFileRequiresPath(t *testing.T) {
	if _, err := NewPropertiesFile(PropertiesConfig{}, logx.Nop()); err == nil {
		t.Fatal("expected error")
	}
}
