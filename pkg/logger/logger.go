package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Logger is the structured logger handed to use cases. Arguments after the
// message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

func init() {
	Configure(os.Getenv("ENVIRONMENT"))
}

// Configure switches handler and level for the given environment.
func Configure(environment string) {
	if environment == "development" || environment == "" {
		log.SetHandler(text.New(os.Stdout))
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetHandler(json.New(os.Stdout))
	log.SetLevel(log.InfoLevel)
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

type apexLogger struct {
	entry *log.Entry
}

// New returns a structured Logger tagged with the given component name.
func New(component string) Logger {
	return &apexLogger{entry: log.WithField("component", component)}
}

func (l *apexLogger) with(kv []interface{}) *log.Entry {
	if len(kv) == 0 {
		return l.entry
	}
	fields := log.Fields{}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fields[key] = "(missing)"
			break
		}
		if err, ok := kv[i+1].(error); ok {
			fields[key] = err.Error()
			continue
		}
		fields[key] = kv[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l *apexLogger) Debug(msg string, kv ...interface{}) { l.with(kv).Debug(msg) }
func (l *apexLogger) Info(msg string, kv ...interface{})  { l.with(kv).Info(msg) }
func (l *apexLogger) Warn(msg string, kv ...interface{})  { l.with(kv).Warn(msg) }
func (l *apexLogger) Error(msg string, kv ...interface{}) { l.with(kv).Error(msg) }

// Nop discards everything. Used by tests.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}

// MaskID keeps the first characters of an identifier for log lines.
func MaskID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[:6] + strings.Repeat("*", 3)
}
