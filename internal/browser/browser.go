package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	return cmd.Start()
}

// Opener launches the platform's default browser
type Opener struct {
	commander Commander
	goos      string
}

// New returns an Opener for the running platform
func New() *Opener {
	return NewWithCommander(RealCommander{}, runtime.GOOS)
}

// NewWithCommander returns an Opener using the given commander and OS (for testing)
func NewWithCommander(commander Commander, goos string) *Opener {
	return &Opener{commander: commander, goos: goos}
}

// Open opens rawURL in the default browser. Only http and https URLs are accepted.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http url", rawURL)
	}

	name, args, err := command(o.goos, u.String())
	if err != nil {
		return err
	}
	return o.commander.Start(name, args...)
}

func command(goos, target string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
