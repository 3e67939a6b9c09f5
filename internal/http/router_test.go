package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	apphttp "github.com/yungbote/catalog-backend/internal/http"
	httpH "github.com/yungbote/catalog-backend/internal/http/handlers"
	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/http/validation"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/localstore"
	"github.com/yungbote/catalog-backend/internal/seed"
	"github.com/yungbote/catalog-backend/internal/services"
)

const hostAPI = "http://localhost:3000/api"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{1}, 32)...)

func newRouter(t *testing.T, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		t.Fatalf("validation.Register: %v", err)
	}

	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.New()

	productRepo := repos.NewProductRepo(db, log)
	agg := aggregates.NewProductAggregate(aggregates.ProductAggregateDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)},
		Products: productRepo,
		Images:   repos.NewProductImageRepo(db, log),
	})
	products := services.NewProductService(db, log, productRepo, agg)

	store, err := localstore.New(filepath.Join(t.TempDir(), "products"), log)
	if err != nil {
		t.Fatalf("localstore.New: %v", err)
	}
	files := services.NewFileService(log, store, hostAPI, metrics)

	fixtures, err := seed.Products()
	if err != nil {
		t.Fatalf("seed.Products: %v", err)
	}
	seeder := services.NewSeedService(log, products, fixtures, metrics)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ProductHandler: httpH.NewProductHandler(products),
		FileHandler:    httpH.NewFileHandler(files, maxUpload),
		SeedHandler:    httpH.NewSeedHandler(seeder),
		HealthHandler:  httpH.NewHealthHandler(sqlDB),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func upload(t *testing.T, r *gin.Engine, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/files/product", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProductRoutes(t *testing.T) {
	r := newRouter(t, 1<<20)

	rec := do(t, r, http.MethodPost, "/api/products", map[string]any{
		"title":  "Women's Cropped Puffer Jacket",
		"price":  225,
		"sizes":  []string{"XS", "S"},
		"gender": "women",
		"images": []string{"a.jpg", "b.jpg"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decode[catalog.ProductView](t, rec)
	if created.Slug != "womens-cropped-puffer-jacket" || len(created.Images) != 2 {
		t.Fatalf("create: unexpected %+v", created)
	}

	rec = do(t, r, http.MethodPost, "/api/products", map[string]any{
		"title": "Women's Cropped Puffer Jacket", "sizes": []string{}, "gender": "women",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: status %d", rec.Code)
	}
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Code != "duplicate_key" {
		t.Fatalf("duplicate: unexpected %+v", env)
	}

	rec = do(t, r, http.MethodPost, "/api/products", map[string]any{"title": "No Gender", "sizes": []string{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body: status %d", rec.Code)
	}
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Code != "invalid_request" {
		t.Fatalf("invalid body: unexpected %+v", env)
	}

	rec = do(t, r, http.MethodGet, "/api/products/WOMENS-CROPPED-PUFFER-JACKET", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("find by slug: status %d", rec.Code)
	}
	if got := decode[catalog.ProductView](t, rec); got.ID != created.ID {
		t.Fatalf("find by slug: unexpected %+v", got)
	}

	missing := uuid.NewString()
	rec = do(t, r, http.MethodGet, "/api/products/"+missing, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("find missing: status %d", rec.Code)
	}
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Message != "Product with id "+missing+" not found" {
		t.Fatalf("find missing: unexpected %+v", env)
	}

	rec = do(t, r, http.MethodGet, "/api/products?limit=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=-1: status %d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/api/products?limit=5&offset=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	page := decode[services.ProductPage](t, rec)
	if page.Count != 1 || len(page.Data) != 1 || len(page.Data[0].Images) != 2 {
		t.Fatalf("list: unexpected %+v", page)
	}

	rec = do(t, r, http.MethodPatch, "/api/products/"+created.ID.String(), map[string]any{
		"stock":  4,
		"images": []string{"c.jpg"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	updated := decode[catalog.ProductView](t, rec)
	if updated.Stock != 4 || len(updated.Images) != 1 || updated.Images[0] != "c.jpg" {
		t.Fatalf("update: unexpected %+v", updated)
	}

	rec = do(t, r, http.MethodPatch, "/api/products/not-a-uuid", map[string]any{"stock": 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("update bad id: status %d", rec.Code)
	}
	rec = do(t, r, http.MethodPatch, "/api/products/"+created.ID.String(), map[string]any{"gender": "robot"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("update bad gender: status %d", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = do(t, r, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete again: status %d", rec.Code)
	}
}

func TestFileRoutes(t *testing.T) {
	r := newRouter(t, 1<<20)

	rec := upload(t, r, "file", "photo.png", "image/png", pngBytes)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}
	res := decode[map[string]string](t, rec)
	secureURL := res["secureUrl"]
	if !strings.HasPrefix(secureURL, hostAPI+"/files/product/") || !strings.HasSuffix(secureURL, ".png") {
		t.Fatalf("upload: unexpected secureUrl %q", secureURL)
	}

	rec = do(t, r, http.MethodGet, strings.TrimPrefix(secureURL, "http://localhost:3000"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download: status %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes) {
		t.Fatalf("download: bytes differ")
	}

	missing := uuid.NewString() + ".png"
	rec = do(t, r, http.MethodGet, "/api/files/product/"+missing, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("download missing: status %d", rec.Code)
	}
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Code != "image_not_found" || env.Error.Message != "No product found with image "+missing {
		t.Fatalf("download missing: unexpected %+v", env)
	}

	rec = upload(t, r, "file", "notes.txt", "text/plain", []byte("hello"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upload text: status %d", rec.Code)
	}
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Message != "Make sure that the file is an image" {
		t.Fatalf("upload text: unexpected %+v", env)
	}

	rec = upload(t, r, "other", "photo.png", "image/png", pngBytes)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upload wrong field: status %d", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	r := newRouter(t, 256)
	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 4096)...)
	rec := upload(t, r, "file", "big.png", "image/png", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestSeedHealthAndMetricsRoutes(t *testing.T) {
	r := newRouter(t, 1<<20)

	rec := do(t, r, http.MethodGet, "/api/seed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed: status %d body %s", rec.Code, rec.Body.String())
	}
	if msg := decode[response.MessageResponse](t, rec); msg.Message != services.SeedExecuted {
		t.Fatalf("seed: unexpected %+v", msg)
	}

	fixtures, _ := seed.Products()
	rec = do(t, r, http.MethodGet, "/api/products?limit=100", nil)
	if page := decode[services.ProductPage](t, rec); page.Count != int64(len(fixtures)) {
		t.Fatalf("seed: expected %d products, got %d", len(fixtures), page.Count)
	}

	rec = do(t, r, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`catalog_api_requests_total{method="GET",route="/api/seed",status="200"} 1`,
		`catalog_seed_runs_total{status="success"} 1`,
		`catalog_aggregate_operations_total{operation="product.delete_all",status="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics: missing %q in\n%s", want, body)
		}
	}
}
