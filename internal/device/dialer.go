// Package device wraps the platform capabilities the client touches: the
// telephone dialer and URL opening.
package device

import (
	"fmt"
	"os/exec"
	"runtime"
)

// runCommand is swapped out in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// TelDialer opens tel: URIs through the platform opener.
type TelDialer struct{}

// Dial opens the telephone dialer with the given number. Fire-and-forget:
// the opener process is started and not waited on.
func (TelDialer) Dial(number string) error {
	if number == "" {
		return fmt.Errorf("no number to dial")
	}
	return openURI("tel:" + number)
}

// OpenURL opens a web URL in the default browser.
func OpenURL(url string) error {
	return openURI(url)
}

func openURI(uri string) error {
	name, args, err := openerCommand(runtime.GOOS, uri)
	if err != nil {
		return err
	}
	return runCommand(name, args...)
}

// openerCommand resolves the platform URI opener.
func openerCommand(goos, uri string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{uri}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", uri}, nil
	case "linux":
		return "xdg-open", []string{uri}, nil
	default:
		return "", nil, fmt.Errorf("no URI opener for platform %s", goos)
	}
}
