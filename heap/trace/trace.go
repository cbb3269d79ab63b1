package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrBadTrace indicates a malformed trace file.
var ErrBadTrace = errors.New("trace: malformed trace")

// maxPrealloc bounds the op slice reserved from an untrusted header.
const maxPrealloc = 1 << 20

// Kind is an operation type.
type Kind byte

const (
	Alloc   Kind = 'a'
	Realloc Kind = 'r'
	Free    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Realloc:
		return "realloc"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one trace line. Size is unused for Free.
type Op struct {
	Kind Kind
	ID   int
	Size int
}

// Trace is a parsed trace.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseFile reads and parses the trace at path.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = path
	return t, nil
}

// Parse reads a trace. Blank lines and lines starting with '#' are skipped.
// Ids must lie in [0, NumIDs), NumIDs may not exceed the op count, and the op
// count in the header must match.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	var (
		header []int
		t      = &Trace{}
		line   int
		numOps int
	)

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if len(header) < 4 {
			v, err := strconv.Atoi(text)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%w: line %d: bad header value %q", ErrBadTrace, line, text)
			}
			header = append(header, v)
			if len(header) == 4 {
				t.SuggestedHeap, t.NumIDs, numOps, t.Weight = header[0], header[1], header[2], header[3]
				t.Ops = make([]Op, 0, min(numOps, maxPrealloc))
			}
			continue
		}

		op, err := parseOp(text, t.NumIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadTrace, line, err)
		}
		t.Ops = append(t.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(header) < 4 {
		return nil, fmt.Errorf("%w: truncated header (%d of 4 values)", ErrBadTrace, len(header))
	}
	if len(t.Ops) != numOps {
		return nil, fmt.Errorf("%w: header declares %d ops, found %d", ErrBadTrace, numOps, len(t.Ops))
	}
	if err := t.checkIDs(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkIDs bounds the id count by the op count: an id is only usable after
// its alloc op, so a larger count can only come from a corrupt header.
func (t *Trace) checkIDs() error {
	if t.NumIDs < 0 || t.NumIDs > max(len(t.Ops), 1) {
		return fmt.Errorf("%w: %d ids for %d ops", ErrBadTrace, t.NumIDs, len(t.Ops))
	}
	return nil
}

func parseOp(text string, numIDs int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	op := Op{Kind: Kind(fields[0][0])}

	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, fmt.Errorf("id %q out of range [0, %d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// Write encodes t in the text format Parse reads.
func (t *Trace) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", t.SuggestedHeap, t.NumIDs, len(t.Ops), t.Weight)
	for _, op := range t.Ops {
		if op.Kind == Free {
			fmt.Fprintf(bw, "%c %d\n", byte(op.Kind), op.ID)
			continue
		}
		fmt.Fprintf(bw, "%c %d %d\n", byte(op.Kind), op.ID, op.Size)
	}
	return bw.Flush()
}

// WriteFile writes t to path.
func (t *Trace) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
