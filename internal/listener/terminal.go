package listener

import (
	"bytes"
	"io"
)

// terminal adapts a line-mode client that ends lines with CR or CRLF and
// expects CRLF output. A CR closing one read is remembered so that the LF
// opening the next read is dropped instead of becoming an empty line.
type terminal struct {
	conn    io.ReadWriter
	afterCR bool
}

func newTerminal(conn io.ReadWriter) *terminal {
	return &terminal{conn: conn}
}

func (t *terminal) Read(p []byte) (int, error) {
	for {
		n, err := t.conn.Read(p)
		out := t.normalize(p[:n])
		if len(out) > 0 || n == 0 || err != nil {
			return len(out), err
		}
	}
}

// normalize rewrites line endings in place and returns the kept bytes.
func (t *terminal) normalize(b []byte) []byte {
	out := b[:0]
	for _, c := range b {
		switch {
		case c == '\r':
			out = append(out, '\n')
			t.afterCR = true
			continue
		case c == '\n' && t.afterCR:
		case c == 0 && t.afterCR:
			// telnet NVT sends CR NUL for a bare carriage return
		default:
			out = append(out, c)
		}
		t.afterCR = false
	}
	return out
}

func (t *terminal) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	buf.Grow(len(p) + bytes.Count(p, []byte{'\n'}))
	var prev byte
	for _, c := range p {
		if c == '\n' && prev != '\r' {
			buf.WriteByte('\r')
		}
		buf.WriteByte(c)
		prev = c
	}
	if _, err := t.conn.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
