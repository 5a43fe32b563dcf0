package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/internal/services"
)

// urlOpener opens a URL in a browser
type urlOpener interface {
	Open(url string) error
}

// console handles single-key shortcuts typed into the server terminal
type console struct {
	out     io.Writer
	log     *logger.SlogLogger
	planner *services.PlannerService
	opener  urlOpener
	url     string
}

// handleKey performs the action bound to key. Returns true when the server
// should stop.
func (c *console) handleKey(key byte) bool {
	ctx := context.Background()

	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Fprintf(c.out, "%sOpening picker in browser...%s\n", cyan, reset)
		if err := c.opener.Open(c.url); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "g":
		c.generate(ctx)
	case "r":
		if err := c.planner.ResetAllPools(ctx); err != nil {
			fmt.Fprintf(c.out, "%sReset failed: %v%s\n", red, err, reset)
			return false
		}
		fmt.Fprintf(c.out, "%sAll no-repeat pools reset.%s\n", green, reset)
	case "h":
		if c.log.ToggleHTTPLogging() {
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		} else {
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		}
	case "l":
		c.cycleLogLevel()
	case "?":
		c.printHelp()
	case "q", "\x03": // Ctrl+C arrives as a byte in raw mode
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		return true
	}
	return false
}

func (c *console) generate(ctx context.Context) {
	result, err := c.planner.GenerateCombo(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "%s%v%s\n", red, err, reset)
		return
	}
	fmt.Fprintf(c.out, "%s%s%s\n", green, c.planner.StatusMessage(result), reset)

	text, err := c.planner.ComboText(ctx)
	if err != nil {
		return
	}
	fmt.Fprintf(c.out, "%s\n\n", text)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (c *console) cycleLogLevel() {
	next := logger.NextLevel(c.log.GetLevel())
	c.log.SetLevel(next)
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
}

// printHelp displays all available keyboard shortcuts
func (c *console) printHelp() {
	fmt.Fprintf(c.out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(c.out, "    %so%s      - Open picker in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sg%s      - Generate a meal\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sr%s      - Reset all no-repeat pools\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(c.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}
