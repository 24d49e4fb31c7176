package productmap

import (
	"github.com/agentstation/utc"
)

// LoadState is the load lifecycle of an engine.
type LoadState string

// Load states. Error means idle with a failure still on the error stream.
const (
	LoadStateIdle    LoadState = "idle"
	LoadStateLoading LoadState = "loading"
	LoadStateError   LoadState = "error"
)

// String returns the state name.
func (s LoadState) String() string {
	return string(s)
}

// State summarizes an engine at one instant.
type State struct {
	LoadState     LoadState `json:"load_state" yaml:"load_state"`
	Loading       bool      `json:"loading" yaml:"loading"`
	LastError     string    `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Products      int       `json:"products" yaml:"products"`
	Visible       int       `json:"visible" yaml:"visible"`
	OnlyFavorites bool      `json:"only_favorites" yaml:"only_favorites"`
	Query         string    `json:"query,omitempty" yaml:"query,omitempty"`
	Owner         string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Origin        Origin    `json:"origin" yaml:"origin"`
	UpdatedAt     utc.Time  `json:"updated_at" yaml:"updated_at"`

	// Err is the last error itself, for errors.Is checks.
	Err error `json:"-" yaml:"-"`
}
