package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: KeyError, Value: nil}
	}
	return Field{Key: KeyError, Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String(KeyComponent, name)
}

func Graph(id string) Field {
	return String(KeyGraph, id)
}

func Node(id string) Field {
	return String(KeyNode, id)
}

// Edge renders an edge as "src -> dst".
func Edge(src, dst string) Field {
	return String(KeyEdge, src+" -> "+dst)
}

func Strategy(name string) Field {
	return String(KeyStrategy, name)
}

func Operation(op string) Field {
	return String(KeyOperation, op)
}

func Latency(d time.Duration) Field {
	return Duration(KeyLatency, d)
}

func Count(n int) Field {
	return Int(KeyCount, n)
}
