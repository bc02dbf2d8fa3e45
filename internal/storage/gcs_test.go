package storage

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"fashionetl/internal/config"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	status  int
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "/b/archive/o") {
		http.NotFound(w, r)
		return
	}
	if b.status != 0 {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, b.status)
		return
	}

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])

	var meta struct {
		Name string `json:"name"`
	}
	part, err := mr.NextPart()
	if err != nil || json.NewDecoder(part).Decode(&meta) != nil {
		http.Error(w, "bad metadata", http.StatusBadRequest)
		return
	}
	part, err = mr.NextPart()
	if err != nil {
		http.Error(w, "missing media", http.StatusBadRequest)
		return
	}
	body, _ := io.ReadAll(part)

	b.mu.Lock()
	b.objects[meta.Name] = string(body)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"bucket": "archive", "name": meta.Name, "size": strconv.Itoa(len(body))})
}

func newTestArchiver(t *testing.T, b *fakeBucket) *GCSArchiver {
	ts := httptest.NewServer(b)
	t.Cleanup(ts.Close)

	a, err := NewGCSArchiver(context.Background(),
		config.Archive{Bucket: "archive", Prefix: "fashion-etl"},
		"run-1",
		option.WithEndpoint(ts.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestObjectName(t *testing.T) {
	a := &GCSArchiver{prefix: "fashion-etl", runID: "abc"}
	require.Equal(t, "fashion-etl/products-abc.csv", a.ObjectName())

	a.prefix = ""
	require.Equal(t, "products-abc.csv", a.ObjectName())
}

func TestArchiveUploadsFile(t *testing.T) {
	b := &fakeBucket{objects: map[string]string{}}
	a := newTestArchiver(t, b)

	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title,Price\nT-shirt 2,1634400\n"), 0o644))

	require.NoError(t, a.Archive(context.Background(), path))
	require.Equal(t, "Title,Price\nT-shirt 2,1634400\n", b.objects["fashion-etl/products-run-1.csv"])
}

func TestArchiveMissingFile(t *testing.T) {
	b := &fakeBucket{objects: map[string]string{}}
	a := newTestArchiver(t, b)

	err := a.Archive(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	require.Empty(t, b.objects)
}

func TestArchiveRejected(t *testing.T) {
	b := &fakeBucket{objects: map[string]string{}, status: http.StatusForbidden}
	a := newTestArchiver(t, b)

	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title\n"), 0o644))

	require.Error(t, a.Archive(context.Background(), path))
}
