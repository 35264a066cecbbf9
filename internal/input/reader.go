package input

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

// Reader is an interface for reading user input
type Reader interface {
	ReadString(delim byte) (string, error)
}

// StdinReader wraps bufio.Reader for os.Stdin. The buffer is created on
// first use so that constructing one never touches stdin.
type StdinReader struct {
	once   sync.Once
	reader *bufio.Reader
}

// NewStdinReader creates a new StdinReader
func NewStdinReader() *StdinReader {
	return &StdinReader{}
}

// ReadString reads until delimiter
func (r *StdinReader) ReadString(delim byte) (string, error) {
	r.once.Do(func() {
		if r.reader == nil {
			r.reader = bufio.NewReader(os.Stdin)
		}
	})
	return r.reader.ReadString(delim)
}

// Confirm reads one line from r and reports whether it is a yes answer
// ("y" or "yes", case-insensitive). Any read error counts as no.
func Confirm(r Reader) bool {
	answer, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// StringReader is a simple reader for testing.
// Each input string should already include the delimiter that will be used
// in ReadString calls (e.g., "yes\n" for newline delimiter).
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader from strings.
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next pre-configured string.
// Returns io.EOF when all inputs have been consumed.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}
