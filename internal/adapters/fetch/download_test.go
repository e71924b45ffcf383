package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToFile(t *testing.T) {
	payload := strings.Repeat("x", 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "models", "ggml-base.bin")
	var last int64
	calls := 0
	err := ToFile(context.Background(), srv.Client(), srv.URL, dest, func(downloaded, total int64) {
		calls++
		if downloaded < last {
			t.Errorf("progress went backwards: %d < %d", downloaded, last)
		}
		last = downloaded
	})
	if err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != payload {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(payload))
	}
	if calls == 0 || last != int64(len(payload)) {
		t.Errorf("progress calls = %d, last = %d", calls, last)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestToFile_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.bin")
	err := ToFile(context.Background(), srv.Client(), srv.URL, dest, nil)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("ToFile() error = %v, want HTTP 404", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination should not exist after a failed download")
	}
}

func TestToFile_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "canceled.bin")
	if err := ToFile(ctx, srv.Client(), srv.URL, dest, nil); err == nil {
		t.Fatal("ToFile() expected error for canceled context")
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}
