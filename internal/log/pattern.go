package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPattern    = "%time [%level] %msg %field"
	DefaultTimeFormat = "2006-01-02 15:04:05.000"
)

// formatter renders an entry by substituting %time, %level, %field and
// %msg in pattern. Fields are sorted by key.
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	output := f.pattern
	output = strings.Replace(output, "%time", entry.Time.Format(f.time), 1)
	output = strings.Replace(output, "%level", entry.Level.String(), 1)
	output = strings.Replace(output, "%field", buildFields(entry), 1)
	output = strings.Replace(output, "%msg", entry.Message, 1)
	output = strings.TrimRight(output, " ")
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return []byte(output), nil
}

func buildFields(entry *logrus.Entry) string {
	fields := make([]string, 0, len(entry.Data))
	for key, val := range entry.Data {
		stringVal, ok := val.(string)
		if !ok {
			stringVal = fmt.Sprint(val)
		}
		fields = append(fields, key+"="+stringVal)
	}
	slices.Sort(fields)
	return strings.Join(fields, ",")
}

// logrusHandler is a slog.Handler writing through a logrus.Logger, so
// records logged with slog use the pattern formatter.
type logrusHandler struct {
	logger *logrus.Logger
	fields logrus.Fields
	group  string
}

func newPatternHandler(w io.Writer, level slog.Level, pattern, timeFormat string) *logrusHandler {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&formatter{pattern: pattern, time: timeFormat})
	l.SetLevel(toLogrusLevel(level))
	return &logrusHandler{logger: l, fields: logrus.Fields{}}
}

func toLogrusLevel(level slog.Level) logrus.Level {
	switch {
	case level < slog.LevelInfo:
		return logrus.DebugLevel
	case level < slog.LevelWarn:
		return logrus.InfoLevel
	case level < slog.LevelError:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func (h *logrusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsLevelEnabled(toLogrusLevel(level))
}

func (h *logrusHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(logrus.Fields, len(h.fields)+r.NumAttrs())
	for k, v := range h.fields {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(fields, h.group, a)
		return true
	})
	h.logger.WithFields(fields).WithTime(r.Time).Log(toLogrusLevel(r.Level), r.Message)
	return nil
}

func (h *logrusHandler) addAttr(fields logrus.Fields, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			h.addAttr(fields, key, ga)
		}
		return
	}
	fields[key] = v.Any()
}

func (h *logrusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(logrus.Fields, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, a := range attrs {
		h.addAttr(fields, h.group, a)
	}
	return &logrusHandler{logger: h.logger, fields: fields, group: h.group}
}

func (h *logrusHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &logrusHandler{logger: h.logger, fields: h.fields, group: group}
}
