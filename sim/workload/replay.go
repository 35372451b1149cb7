package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// ReplaySource replays stimuli recorded as text, one message per line:
//
//	# time         port            value
//	00:00:00:100   rightLightSens  0.25
//	250            centerIR        true
//
// Times are tick counts or clock notation. Values are converted to the type
// of the named top-level input port. Malformed lines are logged, counted and
// skipped, as are lines longer than MaxLineLen; read failures are returned to the simulator as transient errors.
type ReplaySource struct {
	reader  *bufio.Reader
	ports   map[string]reflect.Type
	closer  io.Closer
	line    int

	Malformed int // lines skipped because they could not be parsed
}

// MaxLineLen is the longest stimulus line ReplaySource accepts, in bytes.
const MaxLineLen = 64 * 1024

// NewReplaySource reads stimuli from r for a model whose input ports are ports.
func NewReplaySource(r io.Reader, ports []sim.PortSpec) *ReplaySource {
	byName := make(map[string]reflect.Type, len(ports))
	for _, p := range ports {
		byName[p.Name()] = p.Type()
	}
	return &ReplaySource{
		reader:  bufio.NewReaderSize(r, MaxLineLen),
		ports:   byName,
	}
}

// OpenReplayFile opens path as a ReplaySource. Close releases the file.
func OpenReplayFile(path string, ports []sim.PortSpec) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stimulus file: %w", err)
	}
	src := NewReplaySource(f, ports)
	src.closer = f
	return src, nil
}

// Close releases the underlying file, if any.
func (r *ReplaySource) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Next implements sim.StimulusSource.
func (r *ReplaySource) Next() (sim.Stimulus, error) {
	for {
		raw, tooLong, err := r.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return sim.Stimulus{}, fmt.Errorf("reading stimuli: %w", err)
		}
		if raw == "" && !tooLong {
			return sim.Stimulus{}, io.EOF
		}
		r.line++
		if tooLong {
			r.Malformed++
			logrus.Warnf("stimulus line %d skipped: longer than %d bytes", r.line, MaxLineLen)
			continue
		}
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		st, err := r.parse(text)
		if err != nil {
			r.Malformed++
			logrus.Warnf("stimulus line %d skipped: %v", r.line, err)
			continue
		}
		return st, nil
	}
}

// readLine returns the next line, newline included. A line that does not fit
// the buffer is discarded up to its newline and reported as tooLong.
func (r *ReplaySource) readLine() (line string, tooLong bool, err error) {
	b, err := r.reader.ReadSlice('\n')
	for errors.Is(err, bufio.ErrBufferFull) {
		tooLong = true
		_, err = r.reader.ReadSlice('\n')
	}
	if tooLong {
		return "", true, err
	}
	return string(b), false, err
}

func (r *ReplaySource) parse(text string) (sim.Stimulus, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return sim.Stimulus{}, fmt.Errorf("want \"<time> <port> <value>\", got %q", text)
	}
	t, err := sim.ParseTime(fields[0])
	if err != nil {
		return sim.Stimulus{}, err
	}
	if t == sim.Infinity {
		return sim.Stimulus{}, fmt.Errorf("stimulus time cannot be infinite")
	}
	port := fields[1]
	typ, ok := r.ports[port]
	if !ok {
		return sim.Stimulus{}, fmt.Errorf("unknown input port %q", port)
	}
	raw := strings.Join(fields[2:], " ")
	v, err := ParseValue(typ, raw)
	if err != nil {
		return sim.Stimulus{}, fmt.Errorf("port %q: %w", port, err)
	}
	return sim.Stimulus{Time: t, Port: port, Value: v}, nil
}

// ParseValue converts raw text to a value of type typ. Supported kinds are
// float64, int, bool and string, including named types over them.
func ParseValue(typ reflect.Type, raw string) (any, error) {
	var v any
	switch typ.Kind() {
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float64 %q", raw)
		}
		v = f
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q", raw)
		}
		v = n
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", raw)
		}
		v = b
	case reflect.String:
		v = raw
		if unq, err := strconv.Unquote(raw); err == nil {
			v = unq
		}
	default:
		return nil, fmt.Errorf("unsupported port type %s", typ)
	}
	return reflect.ValueOf(v).Convert(typ).Interface(), nil
}
