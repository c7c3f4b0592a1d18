package outpost

import (
	"strconv"
	"time"
)

// Attribute is one key/value pair attached to a log event. Attribute
// values travel as strings on the wire, so the helpers below format other
// types up front.
type Attribute struct {
	Key   string
	Value string
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: strconv.Itoa(value)}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: strconv.FormatInt(value, 10)}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

// Bool creates a bool attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: strconv.FormatBool(value)}
}

// Duration creates a duration attribute.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.String()}
}

// Time creates a time attribute in RFC 3339 form.
func Time(key string, value time.Time) Attribute {
	return Attribute{Key: key, Value: value.Format(time.RFC3339Nano)}
}
