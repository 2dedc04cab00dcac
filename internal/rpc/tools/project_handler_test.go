package tools

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeru594/ai-agent/internal/rpc"
	"github.com/veeru594/ai-agent/internal/tools"
)

func TestProjectHandlerSwitchesRoot(t *testing.T) {
	fs, err := tools.NewFilesystem("", 0)
	require.NoError(t, err)
	h := ProjectHandler{FS: fs}

	_, err = fs.ReadFile("main.go")
	require.ErrorIs(t, err, tools.ErrNoProject)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	body, _ := json.Marshal(rpc.ProjectRequest{Path: dir})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/project", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)

	var st rpc.ProjectStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	require.NotEmpty(t, st.Root)
	require.Equal(t, fs.Root(), st.Root)

	content, err := fs.ReadFile("main.go")
	require.NoError(t, err)
	require.Equal(t, "package main\n", content)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/project", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), st.Root)
}

func TestProjectHandlerRejectsBadPaths(t *testing.T) {
	fs, err := tools.NewFilesystem("", 0)
	require.NoError(t, err)
	h := ProjectHandler{FS: fs}

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	for _, body := range []string{`{"path":""}`, `{"path":"/definitely/not/here"}`, `{"path":"` + file + `"}`, `{`} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/project", bytes.NewBufferString(body)))
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	require.Empty(t, fs.Root())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/project", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
