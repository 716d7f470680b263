package db

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

// deadConnError mimics the shape pgconn uses for failures that happened
// before anything was written to the socket.
type deadConnError struct {
	msg  string
	safe bool
}

func (e *deadConnError) Error() string     { return e.msg }
func (e *deadConnError) SafeToRetry() bool { return e.safe }

func TestRetriable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain statement error", errors.New("ERROR: duplicate key value"), false},
		{"safe to retry", &deadConnError{msg: "conn closed", safe: true}, true},
		{"wrapped safe to retry", fmt.Errorf("exec: %w", &deadConnError{msg: "conn closed", safe: true}), true},
		{"explicitly not safe", &deadConnError{msg: "conn closed", safe: false}, false},
		// Mid-statement drops: the write or part of the result set may
		// already be on the server side, so none of these may trigger a
		// re-execution.
		{"unexpected eof", io.ErrUnexpectedEOF, false},
		{"net closed", net.ErrClosed, false},
		{"broken pipe", syscall.EPIPE, false},
		{"connection reset", syscall.ECONNRESET, false},
		{"conn closed text only", errors.New("conn closed"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retriable(tc.err); got != tc.want {
				t.Errorf("retriable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	sql := `
		INSERT INTO patients (id)
		VALUES ($1)`
	if got := firstLine(sql); got != "INSERT INTO patients (id)" {
		t.Errorf("firstLine = %q", got)
	}
}
