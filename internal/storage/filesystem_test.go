package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileSystemSecurity(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewFileSystem(tempDir)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool // true if should succeed
		}{
			{"normal path", "cuento_abc.mp3", true},
			{"subdirectory", "old/cuento_abc.mp3", true},
			{"parent traversal", "../cuento.mp3", false},
			{"complex traversal", "old/../../cuento.mp3", false},
			{"absolute path", "/etc/passwd", false},
			{"hidden traversal", "old/../../../etc/passwd", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.path, []byte("audio"))
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(tempDir, "valid.mp3"), []byte("valid"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := fs.Load(ctx, "valid.mp3"); err != nil {
			t.Errorf("loading valid file: %v", err)
		}
		if _, err := fs.Load(ctx, "../outside.mp3"); err == nil {
			t.Error("expected error for traversal path, got none")
		}
	})
}

func TestFileSystemRoundTrip(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	name := ArtifactName("mp3")
	data := []byte("fake mpeg frames")

	if err := fs.Save(ctx, name, data); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !fs.Exists(ctx, name) {
		t.Fatal("Exists() = false after Save")
	}

	got, err := fs.Load(ctx, name)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Load() = %q, want %q", got, data)
	}

	matches, err := fs.List(ctx, "cuento_*.mp3")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(matches) != 1 || matches[0] != name {
		t.Errorf("List() = %v, want [%s]", matches, name)
	}

	if err := fs.Delete(ctx, name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if fs.Exists(ctx, name) {
		t.Error("Exists() = true after Delete")
	}
}

func TestFileSystemCleanup(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewFileSystem(tempDir)
	ctx := context.Background()

	stale := filepath.Join(tempDir, "cuento_old.mp3")
	fresh := filepath.Join(tempDir, "cuento_new.mp3")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	removed, err := fs.Cleanup(ctx, "cuento_*.mp3", time.Hour)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed = %d, want 1", removed)
	}
	if fs.Exists(ctx, "cuento_old.mp3") {
		t.Error("stale artifact still present")
	}
	if !fs.Exists(ctx, "cuento_new.mp3") {
		t.Error("fresh artifact was removed")
	}
}

func TestArtifactName(t *testing.T) {
	a := ArtifactName("mp3")
	b := ArtifactName(".wav")

	if a == b {
		t.Error("consecutive artifact names collide")
	}
	if !strings.HasPrefix(a, "cuento_") || !strings.HasSuffix(a, ".mp3") {
		t.Errorf("ArtifactName(mp3) = %q", a)
	}
	if !strings.HasSuffix(b, ".wav") {
		t.Errorf("ArtifactName(.wav) = %q", b)
	}
	if !strings.HasSuffix(ArtifactName(""), ".mp3") {
		t.Error("empty extension should default to mp3")
	}
}
