package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"randommotd/internal/config"
	"randommotd/internal/motd"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestAppRotatesIntoSinksAndHistory(t *testing.T) {
	dir := t.TempDir()
	motdDir := filepath.Join(dir, "motd")
	props := filepath.Join(dir, "server.properties")
	hist := filepath.Join(dir, "data", "history.jsonl")

	writeFile(t, filepath.Join(motdDir, "message-list.txt"), "Hello\\u00a7aWorld\n")
	writeFile(t, filepath.Join(motdDir, "randomize-message-timer.txt"), "hours=1\n")
	writeFile(t, props, "server-port=25565\nmotd=old\n")

	cfgPath := filepath.Join(dir, "motdd.yaml")
	writeFile(t, cfgPath, strings.Join([]string{
		"motd:",
		"  config_dir: " + motdDir,
		"logging:",
		"  level: error",
		"  console: false",
		"host:",
		"  log: false",
		"  properties:",
		"    enabled: true",
		"    path: " + props,
		"history:",
		"  driver: file",
		"  path: " + hist,
		"",
	}, "\n"))

	a, err := New(cfgPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var notified []string
	a.notify = func(state string) { notified = append(notified, state) }

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := "Hello" + motd.SectionSign + "aWorld"
	waitFor(t, "first status", func() bool { return a.Current() == want })

	snap := a.Binding().Snapshot()
	if snap.State != motd.StateScheduled || snap.Interval != time.Hour || snap.Messages != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	waitFor(t, "history entry", func() bool {
		entries, err := a.store.Recent(context.Background(), 5)
		return err == nil && len(entries) == 1 && entries[0].Text == want
	})

	b, err := os.ReadFile(props)
	if err != nil {
		t.Fatalf("read properties: %v", err)
	}
	if got := string(b); !strings.Contains(got, "motd=Hello\\u00A7aWorld\n") || !strings.Contains(got, "server-port=25565\n") {
		t.Fatalf("properties = %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := a.Binding().Snapshot().State; got != motd.StateStopped {
		t.Fatalf("state after Stop = %v", got)
	}
	if len(notified) != 2 || notified[0] != notifyReady || notified[1] != notifyStopping {
		t.Fatalf("notified = %q", notified)
	}
}

func TestAppStaysUpWhenConfigDirUnusable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	writeFile(t, blocker, "x")

	cfgPath := filepath.Join(dir, "motdd.json")
	writeFile(t, cfgPath, `{"motd":{"config_dir":"`+filepath.ToSlash(blocker)+`"},"logging":{"level":"error","console":false}}`)

	a, err := New(cfgPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.notify = func(string) {}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := a.Binding().Snapshot().State; got != motd.StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	if a.Current() != "" {
		t.Fatalf("unexpected status %q", a.Current())
	}
	_ = a.Stop(context.Background())
}

func TestNewRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "motdd.yaml")
	writeFile(t, cfgPath, "motd:\n  config_dir: x\n  interval: 5s\n")
	if _, err := New(cfgPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestMapStorageConfig(t *testing.T) {
	tests := []struct {
		name    string
		in      config.HistoryConfig
		driver  string
		busy    time.Duration
		wantErr bool
	}{
		{name: "disabled", in: config.HistoryConfig{Driver: "none"}},
		{name: "empty", in: config.HistoryConfig{}},
		{name: "file", in: config.HistoryConfig{Driver: "file", Path: "h.jsonl"}, driver: "file"},
		{name: "sqlite default busy", in: config.HistoryConfig{Driver: "SQLite", Path: "h.db"}, driver: "sqlite", busy: time.Second},
		{name: "sqlite busy", in: config.HistoryConfig{Driver: "sqlite3", Path: "h.db", BusyTimeout: "3s"}, driver: "sqlite3", busy: 3 * time.Second},
		{name: "sqlite no path", in: config.HistoryConfig{Driver: "sqlite"}, wantErr: true},
		{name: "bad busy", in: config.HistoryConfig{Driver: "sqlite", Path: "h.db", BusyTimeout: "soon"}, wantErr: true},
		{name: "unknown", in: config.HistoryConfig{Driver: "redis"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.History = tt.in
			sc, err := mapStorageConfig(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", sc)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sc.Driver != tt.driver || sc.BusyTimeout != tt.busy {
				t.Fatalf("got %+v", sc)
			}
		})
	}
}

func TestFirstStatusReachesHistory(t *testing.T) {
	dir := t.TempDir()
	motdDir := filepath.Join(dir, "motd")
	writeFile(t, filepath.Join(motdDir, "message-list.txt"), "alpha\nbeta\ngamma\n")
	writeFile(t, filepath.Join(motdDir, "randomize-message-timer.txt"), "hours=2\n")

	cfgPath := filepath.Join(dir, "motdd.json")
	writeFile(t, cfgPath, `{"motd":{"config_dir":"`+filepath.ToSlash(motdDir)+`"},`+
		`"logging":{"level":"error","console":false},"host":{"log":false},`+
		`"history":{"driver":"file","path":"`+filepath.ToSlash(filepath.Join(dir, "history.jsonl"))+`"}}`)

	for i := 0; i < 5; i++ {
		a, err := New(cfgPath)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		a.notify = func(string) {}
		before, err := a.store.Recent(context.Background(), 100)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if err := a.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitFor(t, "first status", func() bool { return a.Current() != "" })
		first := a.Current()

		waitFor(t, "first status in history", func() bool {
			entries, err := a.store.Recent(context.Background(), 100)
			return err == nil && len(entries) == len(before)+1
		})
		entries, _ := a.store.Recent(context.Background(), 1)
		if entries[0].Text != first || entries[0].ID == "" {
			t.Fatalf("run %d: newest history entry = %+v, want text %q", i, entries[0], first)
		}
		if err := a.Stop(context.Background()); err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}
}
