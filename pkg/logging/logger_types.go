package logging

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Level int

const (
	// DebugLevel covers per-node and per-edge chatter
	DebugLevel Level = iota
	InfoLevel
	// WarnLevel marks non-fatal conditions such as truncated synced updates
	WarnLevel
	// ErrorLevel marks failures the engine swallowed, e.g. observer errors
	ErrorLevel
)

var levelNames = [...]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l Level) String() string {
	if l < DebugLevel || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case, plus "warning". Anything
// else reads as InfoLevel.
func ParseLevel(s string) Level {
	s = strings.ToUpper(s)
	if s == "WARNING" {
		return WarnLevel
	}
	for l, name := range levelNames {
		if s == name {
			return Level(l)
		}
	}
	return InfoLevel
}

// Keys used by the domain field helpers. Log consumers can filter on them.
const (
	KeyComponent = "component"
	KeyGraph     = "graph_id"
	KeyNode      = "node"
	KeyEdge      = "edge"
	KeyStrategy  = "strategy"
	KeyOperation = "operation"
	KeyLatency   = "latency"
	KeyCount     = "count"
	KeyError     = "error"
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child carrying fields on every entry
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON object per line. Children from With share the
// writer lock and the level of the root.
type JSONLogger struct {
	writer io.Writer
	level  *levelVar
	fields []Field
	mu     *sync.Mutex
}

type levelVar struct {
	v atomic.Int32
}

func newLevelVar(l Level) *levelVar {
	lv := &levelVar{}
	lv.store(l)
	return lv
}

func (lv *levelVar) load() Level   { return Level(lv.v.Load()) }
func (lv *levelVar) store(l Level) { lv.v.Store(int32(l)) }

type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything. Graphs use it unless a logger is supplied.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return ErrorLevel + 1 }

func NewNopLogger() Logger {
	return NopLogger{}
}

// TimedOperation logs an operation with its latency when ended.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
