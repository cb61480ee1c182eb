package llm

import (
	"bufio"
	"io"
	"strings"
)

// maxEventSize bounds a single SSE line.
const maxEventSize = 1 << 20

// serverSentEventScanner yields the data payloads of a Server-Sent Events stream.
type serverSentEventScanner struct {
	scanner *bufio.Scanner
	data    string
}

// newServerSentEventScanner creates a new SSE scanner.
func newServerSentEventScanner(r io.Reader) *serverSentEventScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &serverSentEventScanner{scanner: sc}
}

// Scan advances to the next "data:" line. Other fields and comments are skipped.
func (s *serverSentEventScanner) Scan() bool {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		s.data = strings.TrimPrefix(data, " ")
		return true
	}
	return false
}

// Data returns the payload of the last data line.
func (s *serverSentEventScanner) Data() string {
	return s.data
}

// Err returns the first read error, if any.
func (s *serverSentEventScanner) Err() error {
	return s.scanner.Err()
}
