package uploads

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNamesFileWithTimestampPrefix(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	url, err := s.Save("photo.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000123-photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000123-photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestSaveStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1) }

	url, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-passwd", url)

	// Nothing escaped the upload directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1-passwd", entries[0].Name())
}

func TestSaveHandlesDegenerateNames(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(2) }

	url, err := s.Save("..", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/2-file", url)
}

func TestHandlerServesSavedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	url, err := s.Save("note.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestNewRejectsEmptyDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
