package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)

	logger := New("test")

	SetLevel(Notice)
	logger.Debug("hidden debug")
	logger.Notice("visible notice")

	SetLevel(Debug)
	logger.Debugf("visible %s", "debug")
	SetLevel(Notice)

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Fatalf("expected debug message to be filtered at notice level; got:\n%s", out)
	}
	for _, exp := range []string{"visible notice", "visible debug", "[test]"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q; got:\n%s", exp, out)
		}
	}
}
