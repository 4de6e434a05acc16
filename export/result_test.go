package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4 fake pdf content for testing")

func TestResult_Bytes(t *testing.T) {
	r := NewResult(samplePDF, "doc-2026-01-02T03-04-05.pdf", 2)
	assert.True(t, bytes.Equal(r.Bytes(), samplePDF))
	assert.Equal(t, "doc-2026-01-02T03-04-05.pdf", r.Filename())
	assert.Equal(t, 2, r.Pages())
}

func TestResult_Base64(t *testing.T) {
	r := NewResult(samplePDF, "a.pdf", 1)
	// base64 of %PDF- starts with JVBER
	assert.Equal(t, "JVBER", r.Base64()[:5])
}

func TestResult_Reader(t *testing.T) {
	r := NewResult(samplePDF, "a.pdf", 1)
	assert.Equal(t, r.Len(), r.Reader().Len())
}

func TestResult_WriteTo(t *testing.T) {
	r := NewResult(samplePDF, "a.pdf", 1)
	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(samplePDF), n)
	assert.Equal(t, samplePDF, buf.Bytes())
}

func TestResult_Save(t *testing.T) {
	r := NewResult(samplePDF, "report-2026-10-15T08-00-00.pdf", 1)
	dir := t.TempDir()

	path, err := r.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-2026-10-15T08-00-00.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)
}
