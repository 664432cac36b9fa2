package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileMatches_DefaultIncludesTextFiles(t *testing.T) {
	p := DefaultProfile()

	for _, path := range []string{"notes.txt", "README.md", "sub/dir/report.txt"} {
		if !p.Matches(path) {
			t.Errorf("default profile should match %q", path)
		}
	}
	for _, path := range []string{"image.png", "sub/archive.zip"} {
		if p.Matches(path) {
			t.Errorf("default profile should not match %q", path)
		}
	}
}

func TestProfileMatches_ExcludeWinsOverInclude(t *testing.T) {
	p := &Profile{
		Include: []string{"**/*.txt"},
		Exclude: []string{"**/secret.txt"},
	}
	if !p.Matches("docs/notes.txt") {
		t.Error("expected docs/notes.txt to match")
	}
	if p.Matches("docs/secret.txt") {
		t.Error("expected docs/secret.txt to be excluded")
	}
}

func TestProfileMatches_EmptyIncludeMatchesAll(t *testing.T) {
	p := &Profile{}
	if !p.Matches("anything.bin") {
		t.Error("empty include list should match everything")
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := []byte("include:\n  - \"*.log\"\nchunk_size: 500\noverlap_percentage: 25\nmax_file_bytes: 2048\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if len(p.Include) != 1 || p.Include[0] != "*.log" {
		t.Errorf("unexpected include list: %v", p.Include)
	}
	if p.ChunkSize != 500 || p.OverlapPercentage != 25 || p.MaxFileBytes != 2048 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestLoadProfile_Missing(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestLoadProfile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("include: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Error("expected error for malformed profile")
	}
}
