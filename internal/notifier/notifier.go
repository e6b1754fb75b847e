package notifier

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/logging"
)

// AppName is the fixed toast source. Windows keeps a registry entry per
// distinct AppName, so it must not vary between runs.
const AppName = "Audio Device Manager"

// send is replaced in tests
var send = func(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

// Notifier sends a desktop notification after default endpoints change
type Notifier struct {
	enabled bool
	appIcon string
}

// New creates a notifier; a disabled notifier sends nothing
func New(enabled bool, appIcon string) *Notifier {
	return &Notifier{enabled: enabled, appIcon: appIcon}
}

// Changed announces the endpoints in results that became default.
func (n *Notifier) Changed(results ...*endpoint.Result) error {
	if !n.enabled {
		logging.Debug("Desktop notifications disabled, skipping")
		return nil
	}

	title, message := summarize(results)
	if message == "" {
		return nil
	}

	originalAppName := beeep.AppName
	beeep.AppName = AppName
	defer func() {
		beeep.AppName = originalAppName
	}()

	if err := send(title, message, n.appIcon); err != nil {
		logging.Error("Failed to send desktop notification: %v", err)
		return err
	}

	logging.Debug("Desktop notification sent: %s", message)
	return nil
}

func summarize(results []*endpoint.Result) (title, message string) {
	var lines []string
	for _, r := range results {
		if r == nil {
			continue
		}
		name := r.Endpoint.Name
		if name == "" {
			name = r.Endpoint.ID
		}
		kind := "Playback"
		if r.Flow == endpoint.Capture {
			kind = "Input"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", kind, name))
	}

	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return "Default audio device changed", lines[0]
	default:
		return "Default audio devices changed", strings.Join(lines, "\n")
	}
}

// Close is a no-op (kept for symmetry with audio.Player)
func (n *Notifier) Close() error {
	return nil
}
