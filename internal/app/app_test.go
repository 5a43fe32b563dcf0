package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/logger"
)

func TestNew_InitializesApp(t *testing.T) {
	app, err := New(logger.Discard(), ":memory:", categories.Default(), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer app.Close()

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.Planner() == nil {
		t.Error("expected planner to be initialized")
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	_, err := New(logger.Discard(), "/nonexistent/path/db.sqlite", categories.Default(), createTestTemplatesFS(), fstest.MapFS{})
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	_, err := New(logger.Discard(), ":memory:", categories.Default(), fstest.MapFS{}, fstest.MapFS{})
	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestNew_LoadsSavedState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "picker.db")

	first, err := New(logger.Discard(), dbPath, categories.Default(), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := first.Planner().AddDish(context.Background(), "mains", "Fish"); err != nil {
		t.Fatalf("AddDish failed: %v", err)
	}
	first.Close()

	second, err := New(logger.Discard(), dbPath, categories.Default(), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close()

	dishes := second.Planner().State(context.Background()).State.Category("mains").Dishes
	if len(dishes) != 4 || dishes[3] != "Fish" {
		t.Errorf("expected saved dish after restart, got %v", dishes)
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/api/state", http.StatusOK},
		{"/api/categories", http.StatusOK},
		{"/api/nothing", http.StatusNotFound},
	}

	router := app.Router()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestApp_Close_Twice(t *testing.T) {
	app := createTestApp(t)
	app.Close()
	app.Close()
}

func TestSetDefaultBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{"sets when empty", "", "http://192.168.1.100:8080"},
		{"replaces localhost", "http://localhost:8080", "http://192.168.1.100:8080"},
		{"keeps configured url", "http://192.168.1.50:8080", "http://192.168.1.50:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApp(t)
			ctx := context.Background()
			if tt.existing != "" {
				if err := app.settings.SetBaseURL(ctx, tt.existing); err != nil {
					t.Fatalf("failed to set initial setting: %v", err)
				}
			}

			app.setDefaultBaseURL("http://192.168.1.100:8080")

			got, err := app.settings.GetBaseURL(ctx)
			if err != nil {
				t.Fatalf("failed to get setting: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSetDefaultBaseURL_HandlesRepoError(t *testing.T) {
	app := createTestApp(t)
	app.repo.DB().Close()

	// Only logs a warning
	app.setDefaultBaseURL("http://192.168.1.100:8080")
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "provider error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "ip addr",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
			}},
			want: "192.168.1.100",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "private preferred over public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8"), ipNet("172.20.0.4")}},
			}},
			want: "172.20.0.4",
		},
		{
			name: "skips loopback address",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("127.0.0.1"), ipNet("10.1.2.3")}},
			}},
			want: "10.1.2.3",
		},
		{
			name: "skips down and loopback interfaces",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.0.2")}},
				mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("192.168.0.3")}},
			}},
			want: "localhost",
		},
		{
			name: "ignores ipv6",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}}},
			}},
			want: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGetPreferredIP_RealProvider(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})
	if ip == "" {
		t.Fatal("IP should never be empty")
	}
	if ip != "localhost" {
		parsed := net.ParseIP(ip)
		if parsed == nil || parsed.To4() == nil {
			t.Errorf("expected IPv4 address or 'localhost', got: %s", ip)
		}
	}
}

func TestApp_Run_StopsOnClose(t *testing.T) {
	app := createTestApp(t)

	done := make(chan error, 1)
	go func() {
		done <- app.Run("127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	app.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after Close")
	}
}

// Helper functions

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Title}}</body></html>`),
		},
	}
}

func createTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(logger.Discard(), ":memory:", categories.Default(), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}
