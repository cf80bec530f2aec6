package pwatcher

import (
	"fmt"
	"strings"
)

// ConfigLoadError is returned alongside a usable Config when the configuration
// file could not be fully applied. It is a recovered error: every field it
// names, or every field if Err is set, holds its default value.
type ConfigLoadError struct {
	File   string
	Fields []string // rejected fields, if the file itself parsed
	Err    error    // read or parse error
}

func (err *ConfigLoadError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("config %s unusable, using defaults: %v", err.File, err.Err)
	}
	return fmt.Sprintf("config %s: invalid %s, using defaults",
		err.File, strings.Join(err.Fields, ", "))
}

func (err *ConfigLoadError) Unwrap() error { return err.Err }

// InvalidConfigError is returned by Allocate when the Config carries values
// that LoadConfig would never produce.
type InvalidConfigError struct {
	Fields []string
}

func (err *InvalidConfigError) Error() string {
	return "invalid configuration: " + strings.Join(err.Fields, ", ")
}

// LaunchError is returned when the server process cannot be spawned. It is not
// retried; the next plugin event triggers another attempt.
type LaunchError struct {
	Args []string
	Err  error
}

func (err *LaunchError) Error() string {
	name := "<empty>"
	if len(err.Args) > 0 {
		name = err.Args[0]
	}
	return fmt.Sprintf("failed to launch %s: %v", name, err.Err)
}

func (err *LaunchError) Unwrap() error { return err.Err }

// WatchError is returned when the plugins directory cannot be watched.
type WatchError struct {
	Dir string
	Err error
}

func (err *WatchError) Error() string {
	return fmt.Sprintf("failed to watch %s: %v", err.Dir, err.Err)
}

func (err *WatchError) Unwrap() error { return err.Err }
