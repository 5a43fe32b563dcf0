package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/handlers"
	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/internal/picker"
	"github.com/abrezinsky/iftarlantern/internal/repository"
	"github.com/abrezinsky/iftarlantern/internal/services"
	"github.com/abrezinsky/iftarlantern/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	planner  *services.PlannerService
	settings *services.SettingsService

	mu        sync.Mutex
	server    *http.Server
	closeOnce sync.Once
}

// New creates and initializes a new application instance. The saved picker
// state is loaded before New returns.
func New(log logger.Logger, dbPath string, registry *categories.Registry, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	planner := services.NewPlannerService(log, repo, registry, picker.NewCryptoRand(nil))
	if err := planner.Load(context.Background()); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	settingsService := services.NewSettingsService(log, repo)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, planner)
	hub.Start()
	planner.SetBroadcaster(hub)

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(planner, settingsService, templatesFS, staticServer, hub, log)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
		planner:  planner,
		settings: settingsService,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Planner returns the picker service
func (a *App) Planner() *services.PlannerService {
	return a.planner
}

// Close stops the HTTP server and closes the database
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		server := a.server
		a.mu.Unlock()

		if server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				a.log.Warn("server shutdown", "error", err)
			}
		}
		if err := a.repo.Close(); err != nil {
			a.log.Warn("failed to close database", "error", err)
		}
	})
}

// Run starts the HTTP server and blocks until it stops
func (a *App) Run(addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.log.Info("Server starting", "url", baseURL)
	err := server.ListenAndServe()
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful on other devices)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.settings.GetBaseURL(ctx)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() && ip.To4() != nil {
			return ip.String()
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}
