package storage

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"buildportal/internal/domain"
)

// minimal PNG header, enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestPutOpenDelete(t *testing.T) {
	store := NewBlobStore(afero.NewMemMapFs())

	stored, err := store.Put("objects/10/photos", "site.PNG", strings.NewReader(string(pngHeader)+"rest"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(stored.Path, "objects/10/photos/") || !strings.HasSuffix(stored.Path, ".png") {
		t.Errorf("Path = %q", stored.Path)
	}
	if stored.MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", stored.MimeType)
	}
	if stored.Size != int64(len(pngHeader)+4) {
		t.Errorf("Size = %d", stored.Size)
	}

	blob, err := store.Open(stored.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, _ := io.ReadAll(blob)
	blob.Close()
	if string(body) != string(pngHeader)+"rest" {
		t.Errorf("content mismatch")
	}
	if blob.Size != stored.Size {
		t.Errorf("Blob.Size = %d, want %d", blob.Size, stored.Size)
	}

	if err := store.Delete(stored.Path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(stored.Path); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := store.Open(stored.Path); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Open() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPut_MimeFallsBackToExtension(t *testing.T) {
	store := NewBlobStore(afero.NewMemMapFs())

	tests := []struct {
		filename string
		content  string
		want     string
	}{
		{"notes.json", `{"a": 1}`, "application/json"},
		{"data.zzq", "plain words", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			stored, err := store.Put("items", tt.filename, strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if stored.MimeType != tt.want {
				t.Errorf("MimeType = %q, want %q", stored.MimeType, tt.want)
			}
		})
	}
}

func TestOpen_ConfinedToRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "secret.txt", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewBlobStore(fs)

	blob, err := store.Open("../../secret.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	blob.Close()
	if blob.Name != "secret.txt" {
		t.Errorf("Name = %q", blob.Name)
	}
}

func TestLocalPath(t *testing.T) {
	if _, err := NewBlobStore(afero.NewMemMapFs()).LocalPath("a/b.ifc"); !errors.Is(err, ErrNoLocalPath) {
		t.Errorf("LocalPath() on MemMapFs error = %v, want ErrNoLocalPath", err)
	}

	root := t.TempDir()
	store, err := NewOSBlobStore(root)
	if err != nil {
		t.Fatalf("NewOSBlobStore() error = %v", err)
	}
	got, err := store.LocalPath("models/b.ifc")
	if err != nil {
		t.Fatalf("LocalPath() error = %v", err)
	}
	if !strings.HasPrefix(got, root) || !strings.HasSuffix(got, "b.ifc") {
		t.Errorf("LocalPath() = %q, want under %q", got, root)
	}
}

func TestLocalFile_CopiesFromMemory(t *testing.T) {
	store := NewBlobStore(afero.NewMemMapFs())
	stored, err := store.Put("models", "house.ifc", strings.NewReader("ISO-10303-21;"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	local, cleanup, err := store.LocalFile(stored.Path)
	if err != nil {
		t.Fatalf("LocalFile() error = %v", err)
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("read local copy: %v", err)
	}
	if string(data) != "ISO-10303-21;" {
		t.Errorf("local copy = %q", data)
	}

	cleanup()
	if _, err := os.Stat(local); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file still present after cleanup: %v", err)
	}

	if _, _, err := store.LocalFile("models/missing.ifc"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LocalFile(missing) error = %v, want ErrNotFound", err)
	}
}
