package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func tempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func validRun(t *testing.T) RunSettings {
	return RunSettings{
		Binary:      tempFile(t, "llama-cli"),
		Model:       tempFile(t, "model.gguf"),
		Prompt:      "Hello",
		MaxTokens:   512,
		Temperature: 0.8,
		TopP:        0.95,
		TopK:        40,
	}
}

func validServer(t *testing.T) ServerSettings {
	return ServerSettings{
		Binary:      tempFile(t, "llama-server"),
		Model:       tempFile(t, "model.gguf"),
		Host:        "127.0.0.1",
		Port:        8080,
		Temperature: 0.8,
		CtxSize:     4096,
		Threads:     8,
	}
}

func TestRunArgsOneFlagPerParameter(t *testing.T) {
	s := validRun(t)
	got := s.Args()
	want := []string{
		"-m", s.Model,
		"-p", "Hello",
		"-n", "512",
		"--temp", "0.8",
		"--top-p", "0.95",
		"--top-k", "40",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestServerArgsOneFlagPerParameter(t *testing.T) {
	s := validServer(t)
	got := s.Args()
	want := []string{
		"--model", s.Model,
		"--host", "127.0.0.1",
		"--port", "8080",
		"--temp", "0.8",
		"--ctx-size", "4096",
		"--threads", "8",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestArgsReflectCurrentFieldValues(t *testing.T) {
	s := validRun(t)
	s.Args() // earlier derivation must not be cached
	s.MaxTokens = 64
	s.Temperature = 1.5

	got := s.Args()
	if got[5] != "64" {
		t.Errorf("max tokens arg = %q, want %q", got[5], "64")
	}
	if got[7] != "1.5" {
		t.Errorf("temperature arg = %q, want %q", got[7], "1.5")
	}
}

func TestRunValidate(t *testing.T) {
	if err := validRun(t).Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	s := validRun(t)
	s.Binary = ""
	if err := s.Validate(); err == nil {
		t.Error("empty binary accepted")
	}

	s = validRun(t)
	s.Binary = "llama-cli not found"
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "llama-cli") {
		t.Errorf("sentinel binary accepted: %v", err)
	}

	s = validRun(t)
	s.Binary = filepath.Join(t.TempDir(), "missing")
	if err := s.Validate(); err == nil {
		t.Error("missing binary accepted")
	}

	s = validRun(t)
	s.Model = ""
	if err := s.Validate(); err == nil {
		t.Error("empty model accepted")
	}

	s = validRun(t)
	s.Model = filepath.Join(t.TempDir(), "missing.gguf")
	if err := s.Validate(); err == nil {
		t.Error("missing model accepted")
	}

	s = validRun(t)
	s.Prompt = "   "
	if err := s.Validate(); err == nil {
		t.Error("blank prompt accepted")
	}
}

func TestServerValidate(t *testing.T) {
	if err := validServer(t).Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	s := validServer(t)
	s.Host = " "
	if err := s.Validate(); err == nil {
		t.Error("blank host accepted")
	}

	for _, port := range []int{0, -1, 65536} {
		s = validServer(t)
		s.Port = port
		if err := s.Validate(); err == nil {
			t.Errorf("port %d accepted", port)
		}
	}
}

func TestEndpointURL(t *testing.T) {
	s := validServer(t)
	if got := s.EndpointURL(); got != "http://127.0.0.1:8080/v1" {
		t.Errorf("EndpointURL() = %q", got)
	}

	s.Host = ""
	s.Port = 0
	if got := s.EndpointURL(); got != "http://127.0.0.1:8080/v1" {
		t.Errorf("EndpointURL() with blank fields = %q", got)
	}

	s.Host = "0.0.0.0"
	s.Port = 9090
	if got := s.BaseURL(); got != "http://0.0.0.0:9090" {
		t.Errorf("BaseURL() = %q", got)
	}
}
