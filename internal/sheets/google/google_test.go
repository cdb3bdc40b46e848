package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
)

type fakeSheets struct {
	mu      sync.Mutex
	tabs    []string
	calls   []string
	written [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, t := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "addSheet")
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.tabs = append(f.tabs, req.Requests[0].AddSheet.Properties.Title)
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		_, _ = w.Write([]byte(`{"updatedRange":"'RT Maret 2025'!A1:C3"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestPublisher(t *testing.T, fake *fakeSheets) *Publisher {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	p, err := NewPublisher(context.Background(), "sheet-id",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	return p
}

func TestPublishCreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Sheet1"}}
	p := newTestPublisher(t, fake)

	rows := [][]string{{"Laporan Pemasukan Iuran RT"}, {}, {"4/3/2025", "Iuran RT - Budi", "75.000"}}
	ref, err := p.Publish(context.Background(), "RT Maret 2025", rows)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref != "'RT Maret 2025'!A1:C3" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if got := strings.Join(fake.calls, ","); got != "get,addSheet,clear,update" {
		t.Fatalf("unexpected call sequence %s", got)
	}
	if len(fake.written) != 3 || fake.written[2][2] != "75.000" {
		t.Fatalf("unexpected values %v", fake.written)
	}
}

func TestPublishReusesExistingTab(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"RT Maret 2025"}}
	p := newTestPublisher(t, fake)

	if _, err := p.Publish(context.Background(), "RT Maret 2025", [][]string{{"x"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := strings.Join(fake.calls, ","); got != "get,clear,update" {
		t.Fatalf("unexpected call sequence %s", got)
	}
}

func TestNewPublisherMissingSpreadsheetID(t *testing.T) {
	_, err := NewPublisher(context.Background(), "  ", goption.WithoutAuthentication())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsOption(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := CredentialsOption(context.Background(), "", ""); err == nil {
		t.Fatal("expected error without credentials")
	}
	if _, err := CredentialsOption(context.Background(), "", "/non/existent/sa.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if opt, err := CredentialsOption(context.Background(), `{"type":"service_account"}`, ""); err != nil || opt == nil {
		t.Fatalf("unexpected result %v, %v", opt, err)
	}
}

func TestQuoteTab(t *testing.T) {
	if got := quoteTab("Bu Siti's"); got != "'Bu Siti''s'" {
		t.Fatalf("quoteTab = %q", got)
	}
}
