package errorhandler

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withConsole(t *testing.T) (*bytes.Buffer, *int) {
	t.Helper()

	var buf bytes.Buffer
	code := -1

	mu.Lock()
	saved := *h
	h.console = &buf
	h.exit = func(c int) { code = c }
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		*h = saved
		mu.Unlock()
	})
	return &buf, &code
}

func TestHandleError(t *testing.T) {
	buf, _ := withConsole(t)
	Init(true, false, true)

	HandleError(errors.New("boom"), "Failed to list devices")
	assert.Contains(t, buf.String(), "Failed to list devices: boom")

	buf.Reset()
	HandleError(nil, "nothing")
	assert.Empty(t, buf.String())
}

func TestHandleErrorQuietConsole(t *testing.T) {
	buf, _ := withConsole(t)
	Init(false, false, true)

	HandleError(errors.New("boom"), "ctx")
	assert.Empty(t, buf.String())
}

func TestHandleCriticalError(t *testing.T) {
	tests := []struct {
		name     string
		exit     bool
		wantCode int
	}{
		{"exit enabled", true, 1},
		{"exit disabled", false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, code := withConsole(t)
			Init(true, tt.exit, true)

			HandleCriticalError(errors.New("no logger"), "Failed to initialize logger")

			assert.Equal(t, tt.wantCode, *code)
			assert.Contains(t, buf.String(), "Critical error: Failed to initialize logger")
		})
	}
}

func TestHandlePanicRecovers(t *testing.T) {
	buf, _ := withConsole(t)
	Init(true, false, true)

	func() {
		defer HandlePanic()
		panic("COM exploded")
	}()

	assert.Contains(t, buf.String(), "COM exploded")
}
