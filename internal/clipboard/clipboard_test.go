package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func capture(buf *bytes.Buffer) func() (io.WriteCloser, error) {
	return func() (io.WriteCloser, error) { return nopCloser{buf}, nil }
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestWriteAllFallsBackToOSC52(t *testing.T) {
	var buf bytes.Buffer
	s := System{OpenTTY: capture(&buf), Getenv: env(nil), SkipNative: true}

	require.NoError(t, s.WriteAll("- [x] done"))

	out := buf.String()
	assert.Contains(t, out, "\x1b]52;c;")
	assert.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("- [x] done")))
}

func TestPrimaryUsesPrimarySelection(t *testing.T) {
	var buf bytes.Buffer
	s := System{OpenTTY: capture(&buf), Getenv: env(nil)}

	require.NoError(t, s.Primary("abc"))

	assert.Contains(t, buf.String(), "\x1b]52;p;")
}

func TestTmuxPassthrough(t *testing.T) {
	var buf bytes.Buffer
	s := System{OpenTTY: capture(&buf), Getenv: env(map[string]string{"TMUX": "/tmp/tmux-1000/default"}), SkipNative: true}

	require.NoError(t, s.WriteAll("abc"))

	assert.Contains(t, buf.String(), "\x1bPtmux;")
}

func TestOpenFailure(t *testing.T) {
	s := System{
		OpenTTY:    func() (io.WriteCloser, error) { return nil, errors.New("no tty") },
		Getenv:     env(nil),
		SkipNative: true,
	}

	err := s.WriteAll("abc")
	assert.ErrorContains(t, err, "no tty")
}
