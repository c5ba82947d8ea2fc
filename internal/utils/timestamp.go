package utils

import (
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// DisplayLayout matches the dashboard's locale formatting of checkout times
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// NoDateAvailable is displayed for records without a resolvable checkout time
const NoDateAvailable = "No date available"

type timestampKind int

const (
	timestampAbsent timestampKind = iota
	timestampNative
	timestampString
)

// RawTimestamp is a checkout time as stored, before normalization
type RawTimestamp struct {
	kind timestampKind
	t    time.Time
	s    string
	loc  *time.Location
}

// AbsentTimestamp represents a missing field
func AbsentTimestamp() RawTimestamp {
	return RawTimestamp{kind: timestampAbsent}
}

// NativeTimestamp wraps a store-native timestamp already converted to time.Time
func NativeTimestamp(t time.Time) RawTimestamp {
	return RawTimestamp{kind: timestampNative, t: t}
}

// StringTimestamp wraps a stored date string. Zone-less strings are read in loc.
func StringTimestamp(s string, loc *time.Location) RawTimestamp {
	if loc == nil {
		loc = time.Local
	}
	return RawTimestamp{kind: timestampString, s: s, loc: loc}
}

// RawTimestampFrom classifies a field value decoded from a document. Native
// values arrive in UTC and are moved into loc.
func RawTimestampFrom(v any, loc *time.Location) RawTimestamp {
	switch val := v.(type) {
	case nil:
		return AbsentTimestamp()
	case time.Time:
		return NativeTimestamp(inLocation(val, loc))
	case *time.Time:
		if val == nil {
			return AbsentTimestamp()
		}
		return NativeTimestamp(inLocation(*val, loc))
	case *timestamppb.Timestamp:
		if val == nil {
			return AbsentTimestamp()
		}
		return NativeTimestamp(inLocation(val.AsTime(), loc))
	case string:
		return StringTimestamp(val, loc)
	default:
		return AbsentTimestamp()
	}
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// stringLayouts are tried in order; layouts without a zone are parsed in the
// timestamp's location.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	DisplayLayout,
	"January 2, 2006 at 3:04:05 PM MST",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// trimZoneName drops the trailing "(Mountain Daylight Time)" that browser
// Date strings carry after the numeric offset.
func trimZoneName(s string) string {
	if !strings.HasSuffix(s, ")") {
		return s
	}
	if i := strings.LastIndex(s, " ("); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Normalize resolves a raw timestamp to a point in time. It returns nil when
// the value is absent or cannot be parsed.
func Normalize(raw RawTimestamp) *time.Time {
	switch raw.kind {
	case timestampNative:
		t := raw.t
		return &t
	case timestampString:
		s := trimZoneName(strings.TrimSpace(raw.s))
		if s == "" {
			return nil
		}
		for _, layout := range stringLayouts {
			if t, err := time.ParseInLocation(layout, s, raw.loc); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// FormatDateTime renders a checkout time for tables and email rows
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return NoDateAvailable
	}
	return t.Format(DisplayLayout)
}

// FormatDateTimeIn renders t on the wall clock of loc
func FormatDateTimeIn(t *time.Time, loc *time.Location) string {
	if t == nil {
		return NoDateAvailable
	}
	local := inLocation(*t, loc)
	return FormatDateTime(&local)
}
