package storage

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveRejectsUnsupportedTypes(t *testing.T) {
	store := NewImageStore(t.TempDir())

	for _, name := range []string{"ticket.gif", "scan.pdf", "image", "photo.PNG.exe"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(nil, &multipart.FileHeader{Filename: name}, "tickets")
			if !errors.Is(err, ErrUnsupportedImageType) {
				t.Errorf("err = %v, want ErrUnsupportedImageType", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	base := t.TempDir()
	store := NewImageStore(base)

	dir := filepath.Join(base, "premios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "img.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(filepath.Join("premios", "img.png")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after delete")
	}

	// Deleting again, or deleting nothing, is not an error.
	if err := store.Delete(filepath.Join("premios", "img.png")); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
	if err := store.Delete(""); err != nil {
		t.Errorf("empty path delete: %v", err)
	}
}
