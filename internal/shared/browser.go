package shared

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens an http or https page URL in the user's browser.
//
// $BROWSER, when set, is used in place of the platform opener.
func OpenBrowser(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not a page URL: %q", ErrInvalidInput, pageURL)
	}

	var cmd *exec.Cmd
	rt := getRuntime()
	switch {
	case strings.TrimSpace(os.Getenv("BROWSER")) != "":
		cmd = exec.Command(strings.TrimSpace(os.Getenv("BROWSER")), pageURL)
	case rt == "darwin":
		cmd = exec.Command("open", pageURL)
	case rt == "linux":
		cmd = exec.Command("xdg-open", pageURL)
	case rt == "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", pageURL)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait()
	return nil
}
