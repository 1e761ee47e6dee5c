package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// ErrMalformedLine is returned for a line that does not start with two
// unsigned integers.
var ErrMalformedLine = errors.New("stream: malformed edge line")

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Source yields edges in arrival order. Next returns io.EOF after the last
// edge.
type Source interface {
	Next(ctx context.Context) (triest.Edge, error)
	// Name identifies the source kind in logs and metrics.
	Name() string
	Close() error
}

// TextSource parses edges from a line-oriented reader.
type TextSource struct {
	scanner *bufio.Scanner
	line    int64
	name    string
	closer  io.Closer
}

// NewTextSource reads edges from r.
func NewTextSource(r io.Reader) *TextSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &TextSource{scanner: sc, name: "text"}
}

// Next returns the next edge, skipping comments and blank lines.
func (s *TextSource) Next(ctx context.Context) (triest.Edge, error) {
	if err := ctx.Err(); err != nil {
		return triest.Edge{}, err
	}
	for s.scanner.Scan() {
		s.line++
		edge, ok, err := parseLine(s.scanner.Text(), s.line)
		if err != nil {
			return triest.Edge{}, err
		}
		if ok {
			return edge, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return triest.Edge{}, fmt.Errorf("stream: read line %d: %w", s.line+1, err)
	}
	return triest.Edge{}, io.EOF
}

// Line returns the number of lines consumed so far.
func (s *TextSource) Line() int64 {
	return s.line
}

func (s *TextSource) Name() string {
	return s.name
}

// Close releases the underlying reader when the source owns it.
func (s *TextSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// parseLine returns ok=false for lines that carry no edge.
func parseLine(text string, line int64) (triest.Edge, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || text[0] == '#' || text[0] == '%' {
		return triest.Edge{}, false, nil
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(fields) < 2 {
		return triest.Edge{}, false, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, line, text)
	}

	u, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return triest.Edge{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, line, err)
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return triest.Edge{}, false, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, line, err)
	}
	return triest.NewEdge(triest.VertexID(u), triest.VertexID(v)), true, nil
}

// SliceSource replays an in-memory edge list.
type SliceSource struct {
	edges []triest.Edge
	pos   int
}

// NewSliceSource returns a source over edges. The slice is not copied.
func NewSliceSource(edges []triest.Edge) *SliceSource {
	return &SliceSource{edges: edges}
}

func (s *SliceSource) Next(ctx context.Context) (triest.Edge, error) {
	if err := ctx.Err(); err != nil {
		return triest.Edge{}, err
	}
	if s.pos >= len(s.edges) {
		return triest.Edge{}, io.EOF
	}
	e := s.edges[s.pos]
	s.pos++
	return e, nil
}

func (s *SliceSource) Name() string { return "slice" }

func (s *SliceSource) Close() error { return nil }

// ReadAll drains src into a slice.
func ReadAll(ctx context.Context, src Source) ([]triest.Edge, error) {
	var edges []triest.Edge
	for {
		e, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return edges, nil
		}
		if err != nil {
			return edges, err
		}
		edges = append(edges, e)
	}
}
