package flow

import (
	"bufio"
	"io"
	"strings"
)

// LineReader assembles complete lines from a stream, whatever the size of
// the reads the stream delivers. A final unterminated line is returned as
// well.
type LineReader struct {
	r   *bufio.Reader
	n   int
	err error // read error held back until the partial line before it is out
}

// NewLineReader returns a LineReader reading from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 4096)}
}

// Next returns the next line without its line terminator. It returns io.EOF
// once the stream is exhausted.
func (l *LineReader) Next() (string, error) {
	if l.err != nil {
		return "", l.err
	}
	s, err := l.r.ReadString('\n')
	if err != nil {
		if s == "" {
			return "", err
		}
		l.err = err
	}
	l.n++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// Line returns the number of lines read so far.
func (l *LineReader) Line() int {
	return l.n
}
