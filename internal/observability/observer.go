// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// StandardObserver records extraction and normalization operations
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	mu            sync.Mutex
	DebugObserver *DebugObserver // Set when running in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// NewObserver builds the observer used by the CLI and the web server.
// In debug mode the returned observer carries a DebugObserver for step traces.
func NewObserver(debug bool, writer io.Writer) *StandardObserver {
	if !debug {
		return NewStandardObserver(ObservabilityMetrics, writer)
	}
	debugObs := NewDebugObserver(writer)
	debugObs.StandardObserver.DebugObserver = debugObs
	return debugObs.StandardObserver
}

// Discard returns an observer that writes nothing
func Discard() *StandardObserver {
	return NewStandardObserver(ObservabilityOff, io.Discard)
}

// Level returns the configured level
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data. Records are only emitted in debug mode.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level != ObservabilityDebug {
		return
	}
	if data.RequestID == "" {
		data.RequestID = "req-" + time.Now().Format("20060102-150405")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	json.NewEncoder(o.writer).Encode(data)
}

// Warn reports a recoverable problem. Suppressed only when observability is off.
func (o *StandardObserver) Warn(component, format string, args ...interface{}) {
	if o == nil || o.level == ObservabilityOff {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.writer, "Warning: %s: %s\n", component, fmt.Sprintf(format, args...))
}

// Debugf forwards a detail line to the debug observer when one is attached
func (o *StandardObserver) Debugf(component, format string, args ...interface{}) {
	if o == nil || o.DebugObserver == nil {
		return
	}
	o.DebugObserver.LogDetail(component, fmt.Sprintf(format, args...))
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
