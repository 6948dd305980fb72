package logging

import (
	"sort"
	"sync"
	"time"
)

// LogData accumulates fields and timings over the life of one request and
// emits them as a single structured entry.
type LogData struct {
	mu        sync.Mutex
	timeItems map[string]int64
	dataItems map[string]interface{}
	logger    Logger
}

// NewLogData creates an empty LogData writing through logger.
func NewLogData(logger Logger) *LogData {
	return &LogData{
		timeItems: make(map[string]int64),
		dataItems: make(map[string]interface{}),
		logger:    logger,
	}
}

// AddTiming starts a timer; calling the returned func records the elapsed
// milliseconds under entryName.
func (l *LogData) AddTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		timeSince := time.Since(startTime).Milliseconds()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] = timeSince
	}
}

// AddToExistingTiming is AddTiming but accumulates into entryName.
func (l *LogData) AddToExistingTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		timeSince := time.Since(startTime).Milliseconds()
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] += timeSince
	}
}

// AddData records a key/value pair.
func (l *LogData) AddData(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dataItems[key] = value
}

// Fields returns everything recorded so far, sorted by key.
func (l *LogData) Fields() []Field {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make([]Field, 0, len(l.dataItems)+len(l.timeItems))
	for key, value := range l.dataItems {
		fields = append(fields, Field{Key: key, Value: value})
	}
	for key, value := range l.timeItems {
		fields = append(fields, Field{Key: key, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}

// Log returns the logger carrying every recorded field.
func (l *LogData) Log() Logger {
	return l.logger.WithFields(l.Fields()...)
}
