package logger

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field is one structured key/value pair.
type Field interface {
	AddTo(event *zerolog.Event)
	GetKeyValue() (string, interface{})
}

type kind uint8

const (
	kindString kind = iota
	kindInt
	kindInt64
	kindFloat
	kindBool
	kindError
	kindAny
)

type field struct {
	key  string
	kind kind
	str  string
	num  int64
	flt  float64
	val  interface{}
}

func (f field) AddTo(e *zerolog.Event) {
	switch f.kind {
	case kindString:
		e.Str(f.key, f.str)
	case kindInt:
		e.Int(f.key, int(f.num))
	case kindInt64:
		e.Int64(f.key, f.num)
	case kindFloat:
		e.Float64(f.key, f.flt)
	case kindBool:
		e.Bool(f.key, f.num != 0)
	case kindError:
		err, _ := f.val.(error)
		e.AnErr(f.key, err)
	default:
		e.Interface(f.key, f.val)
	}
}

func (f field) GetKeyValue() (string, interface{}) {
	switch f.kind {
	case kindString:
		return f.key, f.str
	case kindInt:
		return f.key, int(f.num)
	case kindInt64:
		return f.key, f.num
	case kindFloat:
		return f.key, f.flt
	case kindBool:
		return f.key, f.num != 0
	case kindError:
		if err, ok := f.val.(error); ok && err != nil {
			return f.key, err.Error()
		}
		return f.key, nil
	}
	return f.key, f.val
}

func String(key, value string) Field { return field{key: key, kind: kindString, str: value} }

func Strings(key string, value []string) Field { return String(key, strings.Join(value, ", ")) }

func Int(key string, value int) Field { return field{key: key, kind: kindInt, num: int64(value)} }

func Int64(key string, value int64) Field { return field{key: key, kind: kindInt64, num: value} }

func Float64(key string, value float64) Field { return field{key: key, kind: kindFloat, flt: value} }

func Bool(key string, value bool) Field {
	f := field{key: key, kind: kindBool}
	if value {
		f.num = 1
	}
	return f
}

// Duration logs d in whole milliseconds.
func Duration(key string, d time.Duration) Field { return Int64(key, d.Milliseconds()) }

// Error logs err under "error". A nil err is omitted by zerolog.
func Error(err error) Field { return field{key: "error", kind: kindError, val: err} }

func Any(key string, value interface{}) Field { return field{key: key, kind: kindAny, val: value} }
