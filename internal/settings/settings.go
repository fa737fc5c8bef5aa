// Package settings holds the user-editable launch settings for both
// front-ends and derives command lines from them.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/locate"
)

// Validation errors are surfaced verbatim in a blocking dialog, so the
// messages here are user-facing sentences rather than wrapped errors.

// RunSettings are the fields of the inference front-end.
type RunSettings struct {
	Binary      string
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// Validate checks the fields before a launch. The first failure wins
// and no launch may be attempted after a non-nil return.
func (s RunSettings) Validate() error {
	if err := validateBinary(s.Binary, "llama-cli"); err != nil {
		return err
	}
	if err := validateModel(s.Model); err != nil {
		return err
	}
	if strings.TrimSpace(s.Prompt) == "" {
		return errors.New("Please enter a prompt.")
	}
	return nil
}

// Args derives the llama-cli argument vector from the current field
// values. Call it at launch time, not before.
func (s RunSettings) Args() []string {
	return []string{
		"-m", s.Model,
		"-p", s.Prompt,
		"-n", strconv.Itoa(s.MaxTokens),
		"--temp", formatFloat(s.Temperature),
		"--top-p", formatFloat(s.TopP),
		"--top-k", strconv.Itoa(s.TopK),
	}
}

// ServerSettings are the fields of the server front-end.
type ServerSettings struct {
	Binary      string
	Model       string
	Host        string
	Port        int
	Temperature float64
	CtxSize     int
	Threads     int
}

// Validate checks the fields before a server launch.
func (s ServerSettings) Validate() error {
	if err := validateBinary(s.Binary, "llama-server"); err != nil {
		return err
	}
	if err := validateModel(s.Model); err != nil {
		return err
	}
	if strings.TrimSpace(s.Host) == "" {
		return errors.New("Please enter a host address.")
	}
	if s.Port < 1 || s.Port > 65535 {
		return errors.New("Please enter a valid port (1-65535).")
	}
	return nil
}

// Args derives the llama-server argument vector from the current field
// values.
func (s ServerSettings) Args() []string {
	return []string{
		"--model", s.Model,
		"--host", strings.TrimSpace(s.Host),
		"--port", strconv.Itoa(s.Port),
		"--temp", formatFloat(s.Temperature),
		"--ctx-size", strconv.Itoa(s.CtxSize),
		"--threads", strconv.Itoa(s.Threads),
	}
}

// BaseURL is the server root URL. Blank or out-of-range fields fall
// back to 127.0.0.1:8080 so the monitoring poll always has a target.
func (s ServerSettings) BaseURL() string {
	host := strings.TrimSpace(s.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := s.Port
	if port < 1 || port > 65535 {
		port = 8080
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// EndpointURL is the OpenAI-compatible base URL shown in the endpoint
// field.
func (s ServerSettings) EndpointURL() string {
	return s.BaseURL() + "/v1"
}

func validateBinary(path, name string) error {
	if path == "" || locate.IsSentinel(path) {
		return fmt.Errorf("Please specify the %s binary path.", name)
	}
	if !isFile(path) {
		return fmt.Errorf("Binary not found: %s", path)
	}
	return nil
}

func validateModel(path string) error {
	if path == "" {
		return errors.New("Please select a model file.")
	}
	if !isFile(path) {
		return fmt.Errorf("Model file not found: %s", path)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
