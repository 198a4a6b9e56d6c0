package util

import (
	"testing"
	"time"
)

func TestInitHostname(t *testing.T) {
	defer func() { hostname = "" }()

	if err := InitHostname("Node1.example.com"); err != nil {
		t.Fatal(err)
	}
	if got := Hostname(); got != "node1" {
		t.Errorf("Hostname() = %q, want node1", got)
	}

	if err := InitHostname(""); err != nil {
		t.Fatal(err)
	}
	if got := Hostname(); got == "" || got == "unknown" {
		t.Errorf("Hostname() = %q after system init", got)
	}
}

func TestHostnameBeforeInit(t *testing.T) {
	prev := hostname
	hostname = ""
	defer func() { hostname = prev }()
	if got := Hostname(); got != "unknown" {
		t.Errorf("Hostname() = %q, want unknown", got)
	}
}

func TestBtoi(t *testing.T) {
	if Btoi(true) != 1 || Btoi(false) != 0 {
		t.Error("Btoi broken")
	}
}

func TestReadCommand(t *testing.T) {
	var lines []string
	err := ReadCommand(func(line string) error {
		lines = append(lines, line)
		return nil
	}, "echo", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("lines = %v", lines)
	}
}

func TestCommandTimeout(t *testing.T) {
	_, err := Command(50*time.Millisecond, nil, "sleep", "2")
	if err != ErrTimeout {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestCommandNotInPath(t *testing.T) {
	_, err := Command(time.Second, nil, "no-such-binary-here")
	if err != ErrPath {
		t.Errorf("err = %v, want ErrPath", err)
	}
}

func TestInPath(t *testing.T) {
	if !InPath("echo") {
		t.Error("echo not found in PATH")
	}
	if InPath("no-such-binary-here") {
		t.Error("nonexistent binary found in PATH")
	}
}
