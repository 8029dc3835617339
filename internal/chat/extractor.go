// Package chat extracts SKU → location mappings from exported chat
// transcripts.
//
// Each line goes through four steps: noise filtering (substring markers),
// message-line recognition (bracketed timestamp, sender, body), assertion
// extraction (first SKU/location pair in the body), and a fold into the
// mapping where the last assertion for a SKU in line order wins.
//
// Lines that cannot be classified are skipped silently. The only error
// Extract reports is failure to read the transcript itself.
package chat

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/hpungsan/skuloc/internal/errors"
)

// DefaultNoiseMarkers are substrings that mark a line as a system or
// placeholder event. They share the message prefix but never carry a
// SKU/location assertion.
var DefaultNoiseMarkers = []string{
	"This message was deleted",
	"This message was edited",
	"image omitted",
	"Messages and calls are end-to-end encrypted",
	"created group",
	"added you",
	"Done",
}

// maxLineBytes bounds a single transcript line. Longer lines are skipped.
const maxLineBytes = 10 * 1024 * 1024

// Stats counts how each transcript line was classified.
type Stats struct {
	Lines             int `json:"lines"`
	NoiseLines        int `json:"noise_lines"`
	NonMessageLines   int `json:"non_message_lines"`
	UnmatchedMessages int `json:"unmatched_messages"`
	Assertions        int `json:"assertions"`
	Updates           int `json:"updates"`
	MultiLocations    int `json:"multi_locations"`
	Overwrites        int `json:"overwrites"`
	OversizedLines    int `json:"oversized_lines"`
}

// Result is the outcome of one extraction.
type Result struct {
	Mapping *Mapping
	Stats   Stats
}

// Count returns the number of distinct SKUs extracted.
func (r *Result) Count() int {
	return r.Mapping.Len()
}

// Extractor turns transcripts into mappings. It is immutable after
// construction and safe to reuse; each call owns its own mapping.
type Extractor struct {
	markers []string
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNoiseMarkers replaces the noise marker set.
func WithNoiseMarkers(markers ...string) Option {
	return func(e *Extractor) {
		e.markers = cleanMarkers(markers)
	}
}

// WithExtraNoiseMarkers adds markers to the current set.
func WithExtraNoiseMarkers(markers ...string) Option {
	return func(e *Extractor) {
		e.markers = cleanMarkers(append(slices.Clone(e.markers), markers...))
	}
}

// WithLogger sets the logger used for per-line debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor with DefaultNoiseMarkers unless
// overridden by options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		markers: slices.Clone(DefaultNoiseMarkers),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// noiseMarker returns the first marker contained in line, if any.
func (e *Extractor) noiseMarker(line string) (string, bool) {
	for _, m := range e.markers {
		if strings.Contains(line, m) {
			return m, true
		}
	}
	return "", false
}

// ExtractFile opens path and extracts its mapping. A missing, unreadable
// or directory path fails with INPUT_UNAVAILABLE before any line is read.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	return e.ExtractFileWith(path, os.Open)
}

// ExtractFileWith is ExtractFile with a caller-supplied open function.
// Structured errors from open are returned as they are; any other open
// or read failure becomes INPUT_UNAVAILABLE.
func (e *Extractor) ExtractFileWith(path string, open func(string) (*os.File, error)) (*Result, error) {
	f, err := open(path)
	if err != nil {
		var sErr *errors.SkulocError
		if errors.As(err, &sErr) {
			return nil, err
		}
		return nil, errors.NewInputUnavailable(path, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil {
		return nil, errors.NewInputUnavailable(path, err)
	} else if info.IsDir() {
		return nil, errors.NewInputUnavailable(path, nil)
	}

	res, err := e.Extract(f)
	if err != nil {
		return nil, errors.NewInputUnavailable(path, err)
	}
	return res, nil
}

// Extract consumes r line by line and returns the final mapping. Lines
// longer than maxLineBytes are drained and counted as oversized. Only a
// read failure is an error, and it returns no partial result.
func (e *Extractor) Extract(r io.Reader) (*Result, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	res := &Result{Mapping: newMapping()}

	var line []byte
	oversized := false
	for {
		chunk, err := br.ReadSlice('\n')
		if err != nil && err != bufio.ErrBufferFull && err != io.EOF {
			return nil, err
		}
		if !oversized {
			if len(line)+len(chunk) > maxLineBytes+1 {
				oversized = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}

		atEOF := err == io.EOF
		switch {
		case oversized:
			res.Stats.Lines++
			res.Stats.OversizedLines++
			e.logger.Debug("skip oversized line", "line", res.Stats.Lines)
		case !atEOF || len(line) > 0:
			e.processLine(res, string(trimEOL(line)))
		}
		if atEOF {
			return res, nil
		}
		line = line[:0]
		oversized = false
	}
}

// trimEOL drops a trailing "\n" or "\r\n".
func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

// ExtractLines runs extraction over in-memory lines.
func (e *Extractor) ExtractLines(lines []string) *Result {
	res := &Result{Mapping: newMapping()}
	for _, line := range lines {
		e.processLine(res, line)
	}
	return res
}

func (e *Extractor) processLine(res *Result, line string) {
	res.Stats.Lines++
	n := res.Stats.Lines

	if marker, ok := e.noiseMarker(line); ok {
		res.Stats.NoiseLines++
		e.logger.Debug("skip noise line", "line", n, "marker", marker)
		return
	}

	msg, ok := ParseMessage(line)
	if !ok {
		res.Stats.NonMessageLines++
		e.logger.Debug("skip non-message line", "line", n)
		return
	}

	a, ok := ParseAssertion(msg.Body)
	if !ok {
		res.Stats.UnmatchedMessages++
		e.logger.Debug("no assertion in message", "line", n, "sender", msg.Sender)
		return
	}

	res.Stats.Assertions++
	switch a.Kind {
	case KindUpdate:
		res.Stats.Updates++
	case KindMulti:
		res.Stats.MultiLocations++
	}

	if res.Mapping.set(a.SKU, a.Location) {
		res.Stats.Overwrites++
	}
	e.logger.Debug("assertion", "line", n, "sku", a.SKU, "location", a.Location, "kind", a.Kind)
}

// cleanMarkers drops blank and duplicate markers.
// A blank marker would match every line.
func cleanMarkers(markers []string) []string {
	seen := make(map[string]bool, len(markers))
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m) == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
