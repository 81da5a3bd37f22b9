package logging

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
)

func TestWatermillServiceLoggerDelegates(t *testing.T) {
	base := newRecordingWatermillLogger()
	logger := NewWatermillServiceLogger(base)

	logger.Debug("dbg", LogFields{"component": "stream"})
	logger.Info("info", nil)
	logger.Trace("trace", LogFields{"detail": true})

	boom := errors.New("boom")
	logger.Error("failed", boom, LogFields{"subscription": "sub-1"})

	logs := base.recorder.logs
	if len(logs) != 4 {
		t.Fatalf("expected 4 log entries, got %d", len(logs))
	}

	if logs[0].level != "debug" || logs[0].fields["component"] != "stream" {
		t.Fatalf("unexpected first log: %#v", logs[0])
	}
	if logs[1].level != "info" || logs[1].fields != nil {
		t.Fatalf("unexpected second log: %#v", logs[1])
	}
	if logs[2].level != "trace" {
		t.Fatalf("unexpected third log: %#v", logs[2])
	}
	if logs[3].level != "error" || logs[3].err != boom {
		t.Fatalf("unexpected fourth log: %#v", logs[3])
	}
}

func TestWatermillServiceLoggerWith(t *testing.T) {
	base := newRecordingWatermillLogger()
	logger := NewWatermillServiceLogger(base).With(LogFields{"subscription": "sub-2"})

	logger.Info("connected", LogFields{"offset": "begin"})

	if len(base.recorder.logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(base.recorder.logs))
	}
	fields := base.recorder.logs[0].fields
	if fields["subscription"] != "sub-2" || fields["offset"] != "begin" {
		t.Fatalf("expected merged fields, got %#v", fields)
	}
}

func TestNewSlogServiceLogger(t *testing.T) {
	logger := NewSlogServiceLogger(slog.Default())
	logger.Info("boot", LogFields{"component": "test"})
	logger.With(LogFields{"child": true}).Debug("child", nil)
}

func TestConstructorsPanicOnNil(t *testing.T) {
	for name, fn := range map[string]func(){
		"slog":      func() { NewSlogServiceLogger(nil) },
		"watermill": func() { NewWatermillServiceLogger(nil) },
		"adapter":   func() { NewWatermillAdapter(nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expected panic for nil logger")
				}
			}()
			fn()
		})
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("discarded", LogFields{"noise": true})
	logger.Error("also discarded", errors.New("boom"), nil)
}

func TestWatermillAdapterRoundTrip(t *testing.T) {
	base := newRecordingWatermillLogger()
	adapter := NewWatermillAdapter(NewWatermillServiceLogger(base))

	adapter.Info("info", watermill.LogFields{"via": "adapter"})
	adapter.With(watermill.LogFields{"scoped": "yes"}).Debug("dbg", nil)

	if len(base.recorder.logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(base.recorder.logs))
	}
	if base.recorder.logs[0].fields["via"] != "adapter" {
		t.Fatalf("unexpected first log: %#v", base.recorder.logs[0])
	}
	if base.recorder.logs[1].fields["scoped"] != "yes" {
		t.Fatalf("unexpected second log: %#v", base.recorder.logs[1])
	}
}

type recordedLog struct {
	level  string
	msg    string
	err    error
	fields watermill.LogFields
}

type logRecorder struct {
	logs []recordedLog
}

type recordingWatermillLogger struct {
	scoped   watermill.LogFields
	recorder *logRecorder
}

func newRecordingWatermillLogger() *recordingWatermillLogger {
	return &recordingWatermillLogger{recorder: &logRecorder{}}
}

func (r *recordingWatermillLogger) record(level, msg string, err error, fields watermill.LogFields) {
	merged := fields
	if len(r.scoped) > 0 {
		merged = r.scoped.Add(fields)
	}
	r.recorder.logs = append(r.recorder.logs, recordedLog{level: level, msg: msg, err: err, fields: merged})
}

func (r *recordingWatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	r.record("error", msg, err, fields)
}

func (r *recordingWatermillLogger) Info(msg string, fields watermill.LogFields) {
	r.record("info", msg, nil, fields)
}

func (r *recordingWatermillLogger) Debug(msg string, fields watermill.LogFields) {
	r.record("debug", msg, nil, fields)
}

func (r *recordingWatermillLogger) Trace(msg string, fields watermill.LogFields) {
	r.record("trace", msg, nil, fields)
}

func (r *recordingWatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &recordingWatermillLogger{scoped: r.scoped.Add(fields), recorder: r.recorder}
}
