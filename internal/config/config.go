package config

import "time"

// Defaults holds the launch defaults for both front-ends. Values are
// only starting points for the form fields; the settings read at launch
// time always come from the fields themselves.
type Defaults struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int

	CtxSize int
	Threads int
	Host    string
	Port    int

	PollInterval time.Duration
	PollTimeout  time.Duration
	StopGrace    time.Duration
}

// Default returns the stock defaults.
func Default() Defaults {
	return Defaults{
		MaxTokens:    512,
		Temperature:  0.8,
		TopP:         0.95,
		TopK:         40,
		CtxSize:      4096,
		Threads:      8,
		Host:         "127.0.0.1",
		Port:         8080,
		PollInterval: 5 * time.Second,
		PollTimeout:  2 * time.Second,
		StopGrace:    5 * time.Second,
	}
}
