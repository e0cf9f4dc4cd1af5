package service

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/util"
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fileHeader builds a multipart file header the way gin hands it to a handler.
func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field][0]
}

func localStorage(t *testing.T) (*StorageService, string) {
	dir := t.TempDir()
	return NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}), dir
}

func TestSaveImageLocal(t *testing.T) {
	svc, dir := localStorage(t)

	asset, err := svc.SaveImage(context.Background(), "graphImage", fileHeader(t, "graphImage", "chart.PNG", pngHeader))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if !strings.HasPrefix(asset.Key, "graphImage-") || !strings.HasSuffix(asset.Key, ".png") {
		t.Fatalf("unexpected key %q", asset.Key)
	}
	if asset.URL != "/uploads/"+asset.Key {
		t.Fatalf("url = %q", asset.URL)
	}

	stored, err := os.ReadFile(filepath.Join(dir, asset.Key))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if !bytes.Equal(stored, pngHeader) {
		t.Fatalf("stored content differs")
	}

	if err := svc.Delete(context.Background(), asset.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, asset.Key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
}

func TestSaveImageRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		limit   int64
	}{
		{name: "extension", file: "notes.txt", content: pngHeader},
		{name: "content sniff", file: "fake.png", content: []byte("plain text pretending to be an image")},
		{name: "too large", file: "big.png", content: pngHeader, limit: 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, dir := localStorage(t)
			if tc.limit > 0 {
				svc.MaxImageBytes = tc.limit
			}

			_, err := svc.SaveImage(context.Background(), "graphImage", fileHeader(t, "graphImage", tc.file, tc.content))
			if !util.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("rejected upload left %d files behind", len(entries))
			}
		})
	}
}

func TestNewStorageServiceFallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageMinio, MinioEndpoint: "", LocalPath: t.TempDir()})
	if svc.Provider.Name() != util.StorageLocal {
		t.Fatalf("provider = %q, want local fallback", svc.Provider.Name())
	}
	if svc.MaxImageBytes != util.DefaultMaxImageBytes {
		t.Fatalf("max bytes = %d", svc.MaxImageBytes)
	}
}
