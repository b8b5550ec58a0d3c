package core

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/extruder/engine/containers"
)

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a non-fatal failure reported while processing features.
type Diagnostic struct {
	Severity Severity
	Source   string
	Message  string
	Err      error
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", d.Source, d.Message, d.Err)
	}
	return fmt.Sprintf("[%s] %s", d.Source, d.Message)
}

// DefaultDiagnosticsCapacity bounds how many diagnostics are retained.
const DefaultDiagnosticsCapacity int = 256

// Diagnostics collects non-fatal failures. Every report is also logged.
// It is safe for concurrent use.
type Diagnostics struct {
	mutex   sync.Mutex
	entries *containers.RingQueue[Diagnostic]
	total   int
}

func NewDiagnostics(capacity int) *Diagnostics {
	if capacity <= 0 {
		capacity = DefaultDiagnosticsCapacity
	}
	return &Diagnostics{
		entries: containers.NewRingQueue[Diagnostic](capacity),
	}
}

func (d *Diagnostics) Report(diag Diagnostic) {
	switch diag.Severity {
	case SeverityInfo:
		LogInfo(diag.String())
	case SeverityWarning:
		LogWarn(diag.String())
	default:
		LogError(diag.String())
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.entries.Push(diag)
	d.total++
}

func (d *Diagnostics) Warn(source string, err error, format string, args ...interface{}) {
	d.Report(Diagnostic{
		Severity: SeverityWarning,
		Source:   source,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	})
}

// Count is the number of diagnostics reported since creation, including
// the ones evicted from the ring.
func (d *Diagnostics) Count() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.total
}

// Entries returns the retained diagnostics, oldest first.
func (d *Diagnostics) Entries() []Diagnostic {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.entries.Items()
}
