package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klytics/voxtable/cmd/version"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, unreadable transcript, invalid config
	ExitSystemError = 2 // recognition unavailable, IO error
)

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK      bool        `json:"ok" yaml:"ok"`
	Command string      `json:"command" yaml:"command"`
	Version string      `json:"version" yaml:"version"`
	Data    interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string      `json:"error,omitempty" yaml:"error,omitempty"`
	Code    int         `json:"code,omitempty" yaml:"code,omitempty"`
}

// Success wraps data in an ok envelope.
func Success(cmd string, data interface{}) JSONResult {
	return JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	}
}

// Failure wraps err in an error envelope.
func Failure(cmd string, err error, code int) JSONResult {
	return JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    code,
	}
}

// PrintJSON writes a standard success JSON result to stdout.
func PrintJSON(cmd string, data interface{}) error {
	return FprintJSON(os.Stdout, Success(cmd, data))
}

// PrintJSONError writes a standard error JSON result to stdout.
func PrintJSONError(cmd string, err error, code int) error {
	if encErr := FprintJSON(os.Stdout, Failure(cmd, err, code)); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

// FprintJSON writes v as indented JSON.
func FprintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
