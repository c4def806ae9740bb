// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLogLevel names the variable holding the log level.
const EnvLogLevel = "LINCTL_LOG"

// InitLogger sets up Apex with a custom handler and a log level from the
// LINCTL_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv(EnvLogLevel))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{})

	// An unknown level falls back to ERROR rather than panicking.
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = log.ErrorLevel
	}
	log.SetLevel(l)
}

// CustomHandler formats log messages as "YYYY-MM-DD HH:MM:SS L message".
// Output goes to stderr unless Writer is set, keeping stdout clean for
// command results.
type CustomHandler struct {
	Writer io.Writer

	mu  sync.Mutex
	now func() time.Time
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	timestamp := now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	message := e.Message
	if err, ok := e.Fields["error"]; ok {
		message = fmt.Sprintf("%s: %v", message, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, message)
	return err
}
