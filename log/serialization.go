package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// MessageWire is the JSON form of one log record.
type MessageWire struct {
	Timestamp time.Time  `json:"timestamp"`
	Attrs     []AttrWire `json:"attrs,omitempty"`
	Level     string     `json:"level"`
	Message   string     `json:"message"`
	RequestID string     `json:"aws_request_id,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// AttrWire represents a single slog attribute for wire transfer.
type AttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"` // String representation of the value
}

// appendAttr flattens attr into wire attributes. Group members get dotted
// keys prefixed by the open groups.
func appendAttr(dst []AttrWire, groups []string, attr slog.Attr) []AttrWire {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range members {
			dst = appendAttr(dst, nested, member)
		}
		return dst
	}
	wire := toAttrWire(attr)
	if len(groups) > 0 {
		wire.Key = strings.Join(groups, ".") + "." + wire.Key
	}
	return append(dst, wire)
}

// toAttrWire converts a resolved, non-group slog.Attr to AttrWire.
func toAttrWire(attr slog.Attr) AttrWire {
	wire := AttrWire{Key: attr.Key}
	v := attr.Value
	switch v.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = v.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = v.Duration().String()
	default:
		a := v.Any()
		switch x := a.(type) {
		case nil:
			wire.Type = "any"
			wire.Value = "<nil>"
		case error:
			wire.Type = "error"
			wire.Value = x.Error()
		default:
			if data, err := json.Marshal(x); err == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", x)
			}
		}
	}
	return wire
}

// attrValue turns an AttrWire back into a slog value.
func attrValue(a AttrWire) slog.Value {
	switch a.Type {
	case "int64":
		if n, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
			return slog.Int64Value(n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(a.Value, 10, 64); err == nil {
			return slog.Uint64Value(n)
		}
	case "bool":
		if b, err := strconv.ParseBool(a.Value); err == nil {
			return slog.BoolValue(b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(a.Value, 64); err == nil {
			return slog.Float64Value(f)
		}
	case "time":
		if ts, err := time.Parse(time.RFC3339Nano, a.Value); err == nil {
			return slog.TimeValue(ts)
		}
	case "duration":
		if d, err := time.ParseDuration(a.Value); err == nil {
			return slog.DurationValue(d)
		}
	case "json":
		return slog.AnyValue(json.RawMessage(a.Value))
	}
	return slog.StringValue(a.Value)
}

// ParseLevel maps a level name produced by slog.Level.String back to a
// level. Unknown names map to Info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Forward re-emits a record received from a guest through logger.
func Forward(ctx context.Context, logger *slog.Logger, msg MessageWire) {
	if logger == nil {
		logger = slog.Default()
	}
	level := ParseLevel(msg.Level)
	if !logger.Enabled(ctx, level) {
		return
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	record := slog.NewRecord(ts, level, msg.Message, 0)
	if msg.RequestID != "" {
		record.AddAttrs(slog.String("aws_request_id", msg.RequestID))
	}
	if msg.Source != "" {
		record.AddAttrs(slog.String("source", msg.Source))
	}
	for _, a := range msg.Attrs {
		record.AddAttrs(slog.Attr{Key: a.Key, Value: attrValue(a)})
	}
	_ = logger.Handler().Handle(ctx, record)
}
