package util

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hardware-observer/hardware-exporter/slog"
)

var (
	// ErrPath is returned by Command if the program is not in the PATH.
	ErrPath = errors.New("program not in PATH")
	// ErrTimeout is returned by Command if the program timed out.
	ErrTimeout = errors.New("program killed after timeout")
)

// Command executes the named program with the given arguments. If it does not
// exit within timeout, it is sent SIGINT. After another timeout, it is killed.
func Command(timeout time.Duration, stdin io.Reader, name string, arg ...string) (io.Reader, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPath
	}
	slog.Debugf("executing command: %v %v", name, arg)
	c := exec.Command(name, arg...)
	b := &bytes.Buffer{}
	c.Stdout = b
	c.Stdin = stdin
	if err := c.Start(); err != nil {
		return nil, err
	}
	var timedOut atomic.Bool
	intTimer := time.AfterFunc(timeout, func() {
		slog.Errorf("process taking too long, interrupting: %s %s", name, strings.Join(arg, " "))
		c.Process.Signal(os.Interrupt)
		timedOut.Store(true)
	})
	killTimer := time.AfterFunc(timeout*2, func() {
		slog.Errorf("process taking too long, killing: %s %s", name, strings.Join(arg, " "))
		c.Process.Signal(os.Kill)
		timedOut.Store(true)
	})
	err := c.Wait()
	intTimer.Stop()
	killTimer.Stop()
	if timedOut.Load() {
		return nil, ErrTimeout
	}
	return b, err
}

// ReadCommand runs command name with args and calls line for each line from
// its stdout. The command is interrupted after DefaultTimeout and killed
// after twice that.
func ReadCommand(line func(string) error, name string, arg ...string) error {
	return ReadCommandTimeout(DefaultTimeout, line, nil, name, arg...)
}

// DefaultTimeout is the timeout used by ReadCommand. Main sets it from the
// collect_timeout config value.
var DefaultTimeout = time.Second * 30

// ReadCommandTimeout is the same as ReadCommand with a specifiable timeout.
// It can also take an io.Reader as stdin (useful for chaining commands).
func ReadCommandTimeout(timeout time.Duration, line func(string) error, stdin io.Reader, name string, arg ...string) error {
	b, err := Command(timeout, stdin, name, arg...)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(b)
	for scanner.Scan() {
		if err := line(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Infof("%v: %v", name, err)
	}
	return nil
}

// CommandOutput runs the command and returns its entire stdout.
func CommandOutput(timeout time.Duration, name string, arg ...string) ([]byte, error) {
	r, err := Command(timeout, nil, name, arg...)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// InPath reports whether name resolves to an executable in the PATH.
func InPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
