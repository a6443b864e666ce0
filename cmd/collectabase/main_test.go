package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseItemRecord(t *testing.T) {
	cases := []struct {
		name   string
		record []string
		wantOK bool
		wantID int64
	}{
		{"full", []string{"7", "Mario Kart 8 Deluxe", "Nintendo Switch"}, true, 7},
		{"no id", []string{"", "Halo 3", "Xbox 360"}, true, 0},
		{"title only", []string{"", "Tetris"}, true, 0},
		{"header", []string{"id", "title", "platform"}, false, 0},
		{"blank", []string{"", ""}, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item, ok, err := parseItemRecord(tc.record)
			if err != nil {
				t.Fatalf("parseItemRecord failed: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && item.ID != tc.wantID {
				t.Errorf("id = %d, want %d", item.ID, tc.wantID)
			}
		})
	}

	if _, _, err := parseItemRecord([]string{"abc", "Tetris"}); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestReadItemsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	content := "id,title,platform\n1,Mario Kart 8 Deluxe,Nintendo Switch\n,Chrono Trigger,Super Nintendo\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	items, err := readItemsCSV(path)
	if err != nil {
		t.Fatalf("readItemsCSV failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != 1 || items[0].Platform != "Nintendo Switch" {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].ID != 0 || items[1].Title != "Chrono Trigger" {
		t.Errorf("second item = %+v", items[1])
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", path})
	cmd.SetOut(new(strings.Builder))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(raw), "[marketplace]") {
		t.Error("sample config missing marketplace section")
	}
}

func TestDisplayPlatform(t *testing.T) {
	if got := displayPlatform("nintendo switch"); got != "Nintendo Switch" {
		t.Errorf("displayPlatform = %q", got)
	}
	if got := displayPlatform(""); got != "-" {
		t.Errorf("displayPlatform empty = %q", got)
	}
}
