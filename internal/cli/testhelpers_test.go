package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()
	return runCommandWithInput(t, nil, args)
}

func runCommandWithInput(t *testing.T, in io.Reader, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	if in != nil {
		cmd.SetIn(in)
	}
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeFFmpegStub installs a fake ffmpeg that answers -version and writes
// its last argument as the output file.
func writeFFmpegStub(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ffmpeg")
	stub := `#!/bin/sh
for last; do :; done
case "$last" in
  -version) echo "ffmpeg version stub"; exit 0 ;;
esac
echo "audio" > "$last"
`
	require.NoError(t, os.WriteFile(path, []byte(stub), 0o755))
	return path
}

func newTranslationServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/translations" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}
