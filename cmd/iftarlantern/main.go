package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/app"
	"github.com/abrezinsky/iftarlantern/internal/browser"
	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/config"
	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

const bannerWidth = 62

var (
	version = "dev"
)

var lantern = []string{
	"              _",
	"             (_)",
	"            /___\\",
	"           |[~~~]|        Iftar Lantern",
	"           |[ * ]|        no-repeat meal picker",
	"           |[___]|",
	"            \\___/",
	"              V",
}

// showBanner prints the boxed lantern logo
func showBanner(w io.Writer) {
	border := strings.Repeat("═", bannerWidth)

	fmt.Fprintf(w, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range lantern {
		line += strings.Repeat(" ", bannerWidth-len(line))
		fmt.Fprintf(w, "  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Fprintf(w, "  %s╚%s╝%s\n\n", cyan, border, reset)
}

// loadRegistry reads the category file when one is configured
func loadRegistry(path string) (*categories.Registry, error) {
	if path == "" {
		return categories.Default(), nil
	}
	return categories.LoadFile(path)
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("iftarlantern %s\n", version)
		os.Exit(0)
	}

	if !cfg.NoBanner {
		showBanner(os.Stdout)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	registry, err := loadRegistry(cfg.CategoriesFile)
	if err != nil {
		log.Fatal("Failed to load categories:", err)
	}

	a, err := app.New(appLog, cfg.DBPath, registry, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		a.Close()
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if !cfg.NoKeyboard {
		c := &console{
			out:     os.Stdout,
			log:     appLog,
			planner: a.Planner(),
			opener:  browser.New(),
			url:     fmt.Sprintf("http://localhost:%d/", cfg.Port),
		}
		c.printHelp()

		go listenForKeyboard(c, a.Close)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	// Wait for server error or shutdown
	if err := <-serverErr; err != nil {
		a.Close()
		log.Fatal(err)
	}
}
