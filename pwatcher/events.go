package pwatcher

// eventType describes an event type.
type eventType = string

const (
	eventWarning           eventType = "warning"
	eventAcquired          eventType = "acquired lock"
	eventConfigLoaded      eventType = "config loaded"
	eventMemoryDetected    eventType = "memory detected"
	eventWatcherStarted    eventType = "watcher started"
	eventWatcherStopped    eventType = "watcher stopped"
	eventPluginChanged     eventType = "plugin changed"
	eventProcessSpawnError eventType = "process spawn error"
	eventProcessSpawned    eventType = "process spawned"
	eventProcessSkipped    eventType = "process skipped"
	eventProcessExited     eventType = "process exited"
)

// Event is an interface describing known events.
type Event interface {
	Type() string
	event()
}

// NewEvent creates a new event from the given event type. It is used primarily
// for decoding events from its type. Nil is returned if the event type is
// unknown.
func NewEvent(eventType string) Event {
	switch eventType {
	case eventWarning:
		return &EventWarning{}
	case eventAcquired:
		return &EventAcquired{}
	case eventConfigLoaded:
		return &EventConfigLoaded{}
	case eventMemoryDetected:
		return &EventMemoryDetected{}
	case eventWatcherStarted:
		return &EventWatcherStarted{}
	case eventWatcherStopped:
		return &EventWatcherStopped{}
	case eventPluginChanged:
		return &EventPluginChanged{}
	case eventProcessSpawnError:
		return &EventProcessSpawnError{}
	case eventProcessSpawned:
		return &EventProcessSpawned{}
	case eventProcessSkipped:
		return &EventProcessSkipped{}
	case eventProcessExited:
		return &EventProcessExited{}
	default:
		return nil
	}
}

// EventWarning is emitted when a non-fatal error occurs.
type EventWarning struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

func (ev *EventWarning) Type() string { return eventWarning }
func (ev *EventWarning) event()       {}

// EventAcquired is emitted when the flock (i.e. write lock on the journal) is
// acquired, which is on startup.
type EventAcquired struct{}

func (ev *EventAcquired) Type() string { return eventAcquired }
func (ev *EventAcquired) event()       {}

// EventConfigLoaded is emitted once the configuration file has been read. If
// parts of it were rejected, Error describes what was replaced by defaults.
type EventConfigLoaded struct {
	File  string `json:"file"`
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}

func (ev *EventConfigLoaded) Type() string { return eventConfigLoaded }
func (ev *EventConfigLoaded) event()       {}

// EventMemoryDetected is emitted once the heap size has been computed.
type EventMemoryDetected struct {
	SystemGB    int     `json:"system_gb"`
	AllocatedGB int     `json:"allocated_gb"`
	Mode        RAMMode `json:"mode"`
}

func (ev *EventMemoryDetected) Type() string { return eventMemoryDetected }
func (ev *EventMemoryDetected) event()       {}

// EventWatcherStarted is emitted when the plugins directory is being watched.
type EventWatcherStarted struct {
	Dir string `json:"dir"`
}

func (ev *EventWatcherStarted) Type() string { return eventWatcherStarted }
func (ev *EventWatcherStarted) event()       {}

// EventWatcherStopped is emitted when the watcher shuts down.
type EventWatcherStopped struct {
	Dir string `json:"dir"`
}

func (ev *EventWatcherStopped) Type() string { return eventWatcherStopped }
func (ev *EventWatcherStopped) event()       {}

// EventPluginChanged is emitted for every plugin jar event that passed the
// filters.
type EventPluginChanged struct {
	Op   PluginOp `json:"op"`
	File string   `json:"file"`
}

// PluginOp is the kind of file system change observed on a plugin jar.
type PluginOp string

const (
	PluginCreate PluginOp = "create"
	PluginWrite  PluginOp = "write"
	PluginRename PluginOp = "rename"
)

func (ev *EventPluginChanged) Type() string { return eventPluginChanged }
func (ev *EventPluginChanged) event()       {}

// EventProcessSpawnError is emitted when the server fails to start for any
// reason.
type EventProcessSpawnError struct {
	Reason string `json:"reason"`
}

func (ev *EventProcessSpawnError) Type() string { return eventProcessSpawnError }
func (ev *EventProcessSpawnError) event()       {}

// EventProcessSpawned is emitted when the server has been started.
type EventProcessSpawned struct {
	PID  int      `json:"pid"`
	Args []string `json:"args"`
}

func (ev *EventProcessSpawned) Type() string { return eventProcessSpawned }
func (ev *EventProcessSpawned) event()       {}

// EventProcessSkipped is emitted when a start was requested while the server
// is still alive.
type EventProcessSkipped struct {
	PID int `json:"pid"`
}

func (ev *EventProcessSkipped) Type() string { return eventProcessSkipped }
func (ev *EventProcessSkipped) event()       {}

// EventProcessExited is emitted when the supervisor notices that the server
// has exited.
type EventProcessExited struct {
	PID      int    `json:"pid"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"` // -1 if killed by a signal
}

// IsGraceful returns true if the process exited on its own.
func (ev EventProcessExited) IsGraceful() bool {
	return ev.ExitCode != -1
}

func (ev *EventProcessExited) Type() string { return eventProcessExited }
func (ev *EventProcessExited) event()       {}
