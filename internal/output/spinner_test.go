package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinnerNonTTYPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Waiting for php-fpm")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()

	got := buf.String()
	if got != "Waiting for php-fpm...\n" {
		t.Errorf("Non-TTY output = %q, want single message line", got)
	}
	if strings.Contains(got, "\r") {
		t.Errorf("Non-TTY output should not contain carriage returns: %q", got)
	}
}

func TestSpinnerStartIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Linking")
	s.SetWriter(&buf)

	s.Start()
	s.Start()
	s.Stop()

	if count := strings.Count(buf.String(), "Linking"); count != 1 {
		t.Errorf("Message printed %d times, want 1", count)
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Idle")
	s.SetWriter(&buf)

	// Must not panic or write anything.
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("Stop() before Start() wrote %q", buf.String())
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Restarting php-fpm")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("php-fpm restarted")

	got := buf.String()
	if !strings.Contains(got, "php-fpm restarted\n") {
		t.Errorf("Final message missing, got %q", got)
	}
}

func TestSpinnerRenderMessageWithTimeout(t *testing.T) {
	s := NewSpinner("Waiting for php-fpm").WithTimeout(30 * time.Second)
	s.startTime = time.Now()

	s.mu.Lock()
	msg := s.renderMessage()
	s.mu.Unlock()

	if !strings.HasPrefix(msg, "Waiting for php-fpm (") {
		t.Errorf("renderMessage() = %q, want remaining time suffix", msg)
	}
	if !strings.HasSuffix(msg, "s remaining)") {
		t.Errorf("renderMessage() = %q, want remaining time suffix", msg)
	}
}

func TestSpinnerRenderMessageNoTimeout(t *testing.T) {
	s := NewSpinner("Waiting")

	s.mu.Lock()
	msg := s.renderMessage()
	s.mu.Unlock()

	if msg != "Waiting" {
		t.Errorf("renderMessage() = %q, want bare message", msg)
	}
}

func TestWriterIsTTYBuffer(t *testing.T) {
	var buf bytes.Buffer
	if writerIsTTY(&buf) {
		t.Error("A bytes.Buffer should never be a TTY")
	}
}
