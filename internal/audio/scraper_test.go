package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigveda-rag/internal/models"
)

const audioPage = `<html><body>
<h2>Mandala 1</h2>
<p>1.1 <audio src="01/01-001.mp3" controls></audio></p>
<p>1.2 <audio src="01/01-002.mp3" controls></audio>
       <audio src="01/01-002_2.mp3" controls></audio></p>
<p>intro <audio src="intro.mp3"></audio></p>
<div><AUDIO SRC="01/01-003_3.mp3"></AUDIO></div>
</body></html>`

func TestParseAudioPage(t *testing.T) {
	const base = "https://example.org/rigveda"

	files, err := ParseAudioPage(strings.NewReader(audioPage), base+"/")
	require.NoError(t, err)

	assert.Equal(t, []models.AudioFile{
		{Mandala: 1, Sukta: 1, Version: 1, URL: base + "/01/01-001.mp3"},
		{Mandala: 1, Sukta: 2, Version: 1, URL: base + "/01/01-002.mp3"},
		{Mandala: 1, Sukta: 2, Version: 2, URL: base + "/01/01-002_2.mp3"},
		{Mandala: 1, Sukta: 3, Version: 3, URL: base + "/01/01-003_3.mp3"},
	}, files)
}

func TestParseAudioPageWithoutAudio(t *testing.T) {
	files, err := ParseAudioPage(strings.NewReader("<p>nothing</p>"), "https://example.org")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListMandala(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(audioPage))
	}))
	defer server.Close()

	scraper := NewScraper(server.URL, 5*time.Second, nil)
	files, err := scraper.ListMandala(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/audio_01.htm", gotPath)
	require.Len(t, files, 4)
	assert.Equal(t, server.URL+"/01/01-001.mp3", files[0].URL)
}

func TestListMandalaInvalid(t *testing.T) {
	scraper := NewScraper("http://127.0.0.1:0", time.Second, nil)
	for _, m := range []int{0, -1, 11} {
		_, err := scraper.ListMandala(context.Background(), m)
		assert.ErrorIs(t, err, ErrInvalidMandala)
	}
}

func TestListMandalaUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewScraper(server.URL, time.Second, nil).ListMandala(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandala 10")
}

func TestPageURL(t *testing.T) {
	s := NewScraper("", time.Second, nil)
	assert.Equal(t, DefaultBaseURL+"/audio_07.htm", s.PageURL(7))
}
