package services

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/localstore"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func newTestFileService(t *testing.T) (FileService, string, *observability.Metrics) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "static", "products")
	store, err := localstore.New(dir, testutil.Logger(t))
	if err != nil {
		t.Fatalf("localstore.New: %v", err)
	}
	metrics := observability.New()
	return NewFileService(testutil.Logger(t), store, "http://localhost:3000/api/", metrics), dir, metrics
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.Name())
	}
	return files
}

func TestFileService_SaveProductImage(t *testing.T) {
	svc, dir, _ := newTestFileService(t)

	res, err := svc.SaveProductImage(context.Background(), &UploadedFile{
		Filename:    "../../etc/passwd.png",
		ContentType: "image/png",
		Content:     bytes.NewReader(pngBytes),
	})
	if err != nil {
		t.Fatalf("SaveProductImage: %v", err)
	}
	if !strings.HasPrefix(res.SecureURL, "http://localhost:3000/api/files/product/") {
		t.Fatalf("unexpected secureUrl %q", res.SecureURL)
	}
	if !strings.HasSuffix(res.FileName, ".png") || !strings.HasSuffix(res.SecureURL, "/"+res.FileName) {
		t.Fatalf("unexpected file name %q / %q", res.FileName, res.SecureURL)
	}
	if strings.Contains(res.FileName, "passwd") {
		t.Fatalf("client file name leaked into stored name: %q", res.FileName)
	}

	path, err := svc.FindProductImage(res.FileName)
	if err != nil {
		t.Fatalf("FindProductImage: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(b, pngBytes) {
		t.Fatalf("stored bytes differ")
	}
	if files := storedFiles(t, dir); len(files) != 1 {
		t.Fatalf("expected one stored file, got %v", files)
	}
}

func TestFileService_RejectsNonImagesBeforeWriting(t *testing.T) {
	svc, dir, metrics := newTestFileService(t)
	ctx := context.Background()

	cases := []*UploadedFile{
		nil,
		{ContentType: "image/png"},
		{ContentType: "text/plain", Content: strings.NewReader("hello")},
		{ContentType: "application/pdf", Content: strings.NewReader("%PDF-1.4")},
		{ContentType: "image/svg+xml", Content: strings.NewReader("<svg/>")},
		{ContentType: "image/png", Content: strings.NewReader("definitely not a png")},
		{ContentType: "", Content: bytes.NewReader(pngBytes)},
	}
	for i, f := range cases {
		_, err := svc.SaveProductImage(ctx, f)
		ae := requireAPIError(t, err, http.StatusBadRequest, "invalid_file")
		if ae.Error() != "Make sure that the file is an image" {
			t.Fatalf("case %d: unexpected message %q", i, ae.Error())
		}
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected nothing written, got %v", files)
	}

	var buf bytes.Buffer
	_ = metrics.WritePrometheus(&buf)
	if !strings.Contains(buf.String(), `catalog_uploads_total{outcome="rejected"} 7`) {
		t.Fatalf("expected rejected uploads to be counted:\n%s", buf.String())
	}
}

func TestFileService_ConcurrentUploadsGetDistinctNames(t *testing.T) {
	svc, dir, _ := newTestFileService(t)
	const n = 16

	var wg sync.WaitGroup
	names := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.SaveProductImage(context.Background(), &UploadedFile{
				Filename:    "same.gif",
				ContentType: "image/gif",
				Content:     strings.NewReader("GIF89a" + strings.Repeat("\x00", 32)),
			})
			errs[i] = err
			if res != nil {
				names[i] = res.FileName
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("upload %d: %v", i, errs[i])
		}
		if seen[names[i]] {
			t.Fatalf("duplicate stored name %q", names[i])
		}
		seen[names[i]] = true
	}
	if files := storedFiles(t, dir); len(files) != n {
		t.Fatalf("expected %d files, got %d", n, len(files))
	}
}

func TestFileService_FindProductImage(t *testing.T) {
	svc, dir, _ := newTestFileService(t)

	_, err := svc.FindProductImage("not-there.jpg")
	ae := requireAPIError(t, err, http.StatusNotFound, "image_not_found")
	if ae.Error() != "No product found with image not-there.jpg" {
		t.Fatalf("unexpected message %q", ae.Error())
	}

	if err := os.Mkdir(filepath.Join(dir, "folder.jpg"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	_, err = svc.FindProductImage("folder.jpg")
	requireAPIError(t, err, http.StatusNotFound, "image_not_found")

	if err := os.WriteFile(filepath.Join(dir, "seeded.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	path, err := svc.FindProductImage("seeded.jpg")
	if err != nil {
		t.Fatalf("FindProductImage: %v", err)
	}
	if path != filepath.Join(dir, "seeded.jpg") {
		t.Fatalf("unexpected path %q", path)
	}

	for _, bad := range []string{"../secret.jpg", "a/b.jpg", ""} {
		_, err := svc.FindProductImage(bad)
		requireAPIError(t, err, http.StatusBadRequest, "invalid_image_name")
	}
}

func TestImageSubtype(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"image/jpeg", "jpeg"},
		{"image/jpg", "jpg"},
		{"IMAGE/PNG", "png"},
		{"image/webp; charset=x", "webp"},
		{"image/gif", "gif"},
		{"image/tiff", ""},
		{"text/html", ""},
		{"not a type", ""},
	}
	for _, tc := range cases {
		got, ok := imageSubtype(tc.in)
		if got != tc.want || ok != (tc.want != "") {
			t.Fatalf("imageSubtype(%q) = %q,%v want %q", tc.in, got, ok, tc.want)
		}
	}
}
