package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mandalaOne = `[
  {"veda": "Rigveda", "mandala": 1, "sukta": 1, "text": "I Laud Agni"},
  {"veda": "Rigveda", "mandala": 1, "sukta": 2, "text": "Beautiful Vayu"}
]`

func TestDecodePartition(t *testing.T) {
	verses, err := DecodePartition(strings.NewReader(mandalaOne), 1)
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "Rigveda", verses[0].Source)
	assert.Equal(t, 2, verses[1].Sukta)
	assert.Equal(t, "Beautiful Vayu", verses[1].Text)
}

func TestDecodePartitionMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>"},
		{"null", "null"},
		{"object", `{"mandala": 1}`},
		{"wrong mandala", `[{"veda": "Rigveda", "mandala": 2, "sukta": 1, "text": "x"}]`},
		{"missing sukta", `[{"veda": "Rigveda", "mandala": 1, "text": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePartition(strings.NewReader(tt.body), 1)
			assert.ErrorIs(t, err, ErrMalformedPartition)
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PartitionName(1)), []byte(mandalaOne), 0o644))

	src := NewFileSource(dir)
	verses, err := src.FetchPartition(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, verses, 2)

	_, err = src.FetchPartition(context.Background(), 2)
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/"+PartitionName(1) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(mandalaOne))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/data/", server.Client())
	verses, err := src.FetchPartition(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, verses, 2)

	_, err = src.FetchPartition(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
