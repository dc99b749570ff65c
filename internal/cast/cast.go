// Package cast reads and writes asciicast v2 files, the interchange
// format used by asciinema. A cast is a JSON header line followed by
// newline delimited [time, type, data] event lines with times in
// seconds relative to the start. The bridge converts between casts and
// timelines in both directions.
package cast

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// maxLine bounds a single event line. Full screen repaints of large
// terminals run to hundreds of kilobytes once JSON escaped.
const maxLine = 16 << 20

// Header is the first line of a cast file.
type Header struct {
	Version   int    `json:"version"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Title     string `json:"title,omitempty"`
	Env       *Env   `json:"env,omitempty"`
}

// Env is the environment block of a cast header.
type Env struct {
	Shell string `json:"SHELL,omitempty"`
	Term  string `json:"TERM,omitempty"`
}

// Event types used by the format.
const (
	Output = "o"
	Input  = "i"
	Mark   = "m"
)

// Event is one timed record. Times round-trip at millisecond
// precision, which the format guarantees.
type Event struct {
	Time time.Duration
	Type string
	Data string
}

// MarshalJSON encodes the event as the [seconds, type, data] triple.
func (e Event) MarshalJSON() ([]byte, error) {
	sec := float64(e.Time.Milliseconds()) / 1000.0
	return json.Marshal([]any{sec, e.Type, e.Data})
}

// UnmarshalJSON decodes the [seconds, type, data] triple, rounding the
// time to the nearest millisecond.
func (e *Event) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 3 {
		return fmt.Errorf("event has %d fields, want 3", len(arr))
	}
	sec, ok := arr[0].(float64)
	if !ok {
		return fmt.Errorf("event time is %T, want number", arr[0])
	}
	typ, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("event type is %T, want string", arr[1])
	}
	payload, ok := arr[2].(string)
	if !ok {
		return fmt.Errorf("event data is %T, want string", arr[2])
	}
	e.Time = time.Duration(math.Round(sec*1000)) * time.Millisecond
	e.Type = typ
	e.Data = payload
	return nil
}

// Decode reads a whole cast file. Blank lines between events are
// skipped; any other malformed line fails the decode.
func Decode(r io.Reader) (*Header, []Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("cast: read header: %w", err)
		}
		return nil, nil, fmt.Errorf("cast: empty file")
	}
	var hdr Header
	if err := json.Unmarshal(sc.Bytes(), &hdr); err != nil {
		return nil, nil, fmt.Errorf("cast: parse header: %w", err)
	}
	if hdr.Version != 2 {
		return nil, nil, fmt.Errorf("cast: unsupported version %d", hdr.Version)
	}

	var events []Event
	line := 1
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("cast: line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("cast: read events: %w", err)
	}
	return &hdr, events, nil
}

// Encode writes a cast file: the header line, then one line per event.
func Encode(w io.Writer, hdr *Header, events []Event) error {
	bw := bufio.NewWriter(w)
	enc, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("cast: encode header: %w", err)
	}
	bw.Write(enc)
	bw.WriteByte('\n')
	for i, ev := range events {
		enc, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("cast: encode event %d: %w", i, err)
		}
		bw.Write(enc)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
