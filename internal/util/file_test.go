package util

import (
	"bytes"
	"io"
	"testing"

	"study_planner_backend/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffUploadRewinds(t *testing.T) {
	src := bytes.NewReader([]byte("plain text notes"))
	ct, err := SniffUpload(src)
	require.NoError(t, err)
	assert.Contains(t, ct, "text/plain")

	rest, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "plain text notes", string(rest))
}

func TestSniffUploadRejectsHTML(t *testing.T) {
	_, err := SniffUpload(bytes.NewReader([]byte("<html><body>x</body></html>")))
	assert.ErrorIs(t, err, planner.ErrValidation)
}

func TestUploadExt(t *testing.T) {
	assert.Equal(t, ".png", UploadExt("Scan.PNG"))
	assert.Equal(t, ".pdf", UploadExt("../../etc/report.pdf"))
	assert.Equal(t, "", UploadExt("noext"))
	assert.Equal(t, "", UploadExt("file.averyveryverylongext"))
}
