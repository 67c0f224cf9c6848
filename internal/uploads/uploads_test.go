package uploads

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func formFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write(content)
	w.Close()

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("reading form back: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["image"][0]
	file, err := header.Open()
	if err != nil {
		t.Fatalf("opening form file: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return file, header
}

func TestSaveAndRemove(t *testing.T) {
	store := NewStore(t.TempDir())
	file, header := formFile(t, "photo.PNG", []byte("image-bytes"))

	publicPath, err := store.Save(file, header)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(publicPath, URLPrefix+"/") {
		t.Errorf("public path = %q, want %s prefix", publicPath, URLPrefix)
	}
	if !strings.HasSuffix(publicPath, ".png") {
		t.Errorf("extension not normalized: %q", publicPath)
	}

	onDisk := filepath.Join(store.Dir(), filepath.Base(publicPath))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("saved content = %q", data)
	}

	store.Remove(publicPath)
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Error("file still present after Remove")
	}

	// Removing twice must stay silent.
	store.Remove(publicPath)
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	store := NewStore(t.TempDir())
	file, header := formFile(t, "script.sh", []byte("#!/bin/sh"))

	if _, err := store.Save(file, header); err == nil {
		t.Error("non-image extension accepted")
	}
}
