package ledger

import (
	"fmt"
	"strconv"
)

type offsetKind uint8

const (
	offsetUnspecified offsetKind = iota
	offsetBegin
	offsetAbsolute
	offsetEnd
)

// Offset is an opaque, totally ordered position marker in the ledger's
// transaction sequence. It has three forms: Begin (start of visible history),
// End (current tail, skipping history), and an absolute index. The zero value
// is unspecified; components that accept one substitute their documented
// default.
type Offset struct {
	kind  offsetKind
	index uint64
}

// OffsetBegin returns the offset pointing at the start of visible history.
func OffsetBegin() Offset { return Offset{kind: offsetBegin} }

// OffsetEnd returns the offset pointing at the current tail of the ledger.
// Streams opened from End deliver only transactions committed after the
// stream was opened.
func OffsetEnd() Offset { return Offset{kind: offsetEnd} }

// OffsetAt returns the absolute offset for the given ledger index.
func OffsetAt(index uint64) Offset { return Offset{kind: offsetAbsolute, index: index} }

// IsZero reports whether the offset is the unspecified zero value.
func (o Offset) IsZero() bool { return o.kind == offsetUnspecified }

func (o Offset) IsBegin() bool    { return o.kind == offsetBegin }
func (o Offset) IsEnd() bool      { return o.kind == offsetEnd }
func (o Offset) IsAbsolute() bool { return o.kind == offsetAbsolute }

// Index returns the absolute index and true, or zero and false for the
// Begin/End forms.
func (o Offset) Index() (uint64, bool) {
	if o.kind != offsetAbsolute {
		return 0, false
	}
	return o.index, true
}

// Compare orders two offsets: Begin sorts before every absolute offset and
// End sorts after every absolute offset. Returns -1, 0, or 1.
func (o Offset) Compare(other Offset) int {
	if o.kind != other.kind {
		if o.kind < other.kind {
			return -1
		}
		return 1
	}
	if o.kind != offsetAbsolute || o.index == other.index {
		return 0
	}
	if o.index < other.index {
		return -1
	}
	return 1
}

func (o Offset) String() string {
	switch o.kind {
	case offsetUnspecified:
		return ""
	case offsetBegin:
		return "begin"
	case offsetEnd:
		return "end"
	default:
		return strconv.FormatUint(o.index, 10)
	}
}

// MarshalText encodes the offset as "begin", "end", or its decimal index.
func (o Offset) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses the textual forms produced by MarshalText.
func (o *Offset) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "":
		*o = Offset{}
	case "begin":
		*o = OffsetBegin()
	case "end":
		*o = OffsetEnd()
	default:
		index, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("cantonstream: malformed offset %q: %w", s, err)
		}
		*o = OffsetAt(index)
	}
	return nil
}
