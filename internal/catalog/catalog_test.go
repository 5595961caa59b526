package catalog

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

const testIndex = `[
  {"code": "translate-en_hi", "type": "translate", "from_code": "en", "from_name": "English",
   "to_code": "hi", "to_name": "Hindi", "package_version": "1.1", "argos_version": "1.0",
   "links": ["%s/translate-en_hi-1_1.argosmodel"]},
  {"code": "translate-en_ta", "from_code": "en", "to_code": "ta", "package_version": "1.0",
   "links": ["%s/missing.argosmodel", "%s/translate-en_ta-1_0.argosmodel"]},
  {"code": "sbd", "type": "sbd", "from_code": "en", "to_code": "en"},
  {"code": "translate-en_hi-old", "type": "translate", "from_code": "en", "to_code": "hi", "package_version": "0.9"}
]`

func newIndexServer(t *testing.T, fetches *int32) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.json":
			atomic.AddInt32(fetches, 1)
			body := bytes.ReplaceAll([]byte(testIndex), []byte("%s"), []byte(srv.URL))
			w.Write(body)
		case "/translate-en_hi-1_1.argosmodel":
			w.Write([]byte("hi-archive"))
		case "/translate-en_ta-1_0.argosmodel":
			w.Write([]byte("ta-archive"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	var fetches int32
	srv := newIndexServer(t, &fetches)
	c := New(srv.URL + "/index.json")
	ctx := context.Background()

	pkg, err := c.Lookup(ctx, lang.NewPair("en", "hi"))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if pkg.PackageVersion != "1.1" {
		t.Errorf("Expected first index entry (1.1), got %s", pkg.PackageVersion)
	}

	if _, err := c.Lookup(ctx, lang.NewPair("en", "ta")); err != nil {
		t.Errorf("Lookup en->ta failed: %v", err)
	}

	// The index is fetched only once per catalog
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Expected 1 index fetch, got %d", got)
	}
}

func TestLookup_Unsupported(t *testing.T) {
	var fetches int32
	srv := newIndexServer(t, &fetches)
	c := New(srv.URL + "/index.json")

	_, err := c.Lookup(context.Background(), lang.NewPair("en", "xx"))
	if !errors.Is(err, translation.ErrUnsupportedLanguagePair) {
		t.Errorf("Expected ErrUnsupportedLanguagePair, got %v", err)
	}

	// Non-translate packages are not indexed
	_, err = c.Lookup(context.Background(), lang.NewPair("en", "en"))
	if !errors.Is(err, translation.ErrUnsupportedLanguagePair) {
		t.Errorf("Expected sbd package to be ignored, got %v", err)
	}
}

func TestLookup_IndexFailureNotCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"from_code": "en", "to_code": "hi", "links": ["x"]}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Lookup(context.Background(), lang.NewPair("en", "hi")); err == nil {
		t.Fatal("Expected error while index is unavailable")
	}
	if _, err := c.Lookup(context.Background(), lang.NewPair("en", "hi")); err != nil {
		t.Errorf("Expected second lookup to refetch and succeed, got %v", err)
	}
}

func TestPackages(t *testing.T) {
	var fetches int32
	srv := newIndexServer(t, &fetches)
	c := New(srv.URL + "/index.json")

	list, err := c.Packages(context.Background())
	if err != nil {
		t.Fatalf("Packages failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 packages, got %d", len(list))
	}
	if list[0].ToCode != "hi" || list[1].ToCode != "ta" {
		t.Errorf("Expected packages sorted by pair, got %s, %s", list[0].Pair(), list[1].Pair())
	}
}

func TestDownload(t *testing.T) {
	var fetches int32
	srv := newIndexServer(t, &fetches)
	var progress bytes.Buffer
	c := New(srv.URL+"/index.json", WithProgress(&progress))
	ctx := context.Background()
	dir := t.TempDir()

	pkg, err := c.Lookup(ctx, lang.NewPair("en", "ta"))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	// First link 404s, second succeeds
	path, err := c.Download(ctx, pkg, dir)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected artifact in %s, got %s", dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if string(data) != "ta-archive" {
		t.Errorf("Unexpected artifact content: %q", data)
	}
}

func TestDownload_AllLinksFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(srv.URL)
	pkg := Package{FromCode: "en", ToCode: "hi", Links: []string{srv.URL + "/a", srv.URL + "/b"}}
	dir := t.TempDir()

	if _, err := c.Download(context.Background(), pkg, dir); err == nil {
		t.Fatal("Expected error when every link fails")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no leftover files, found %d", len(entries))
	}
}

func TestDownload_NoLinks(t *testing.T) {
	c := New("http://127.0.0.1:0/index.json")
	if _, err := c.Download(context.Background(), Package{FromCode: "en", ToCode: "hi"}, t.TempDir()); err == nil {
		t.Error("Expected error for package without links")
	}
}
