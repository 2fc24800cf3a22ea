package query

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigveda-rag/internal/models"
)

func verse(m, s int, text string) models.Verse {
	return models.Verse{Source: "Rigveda", Mandala: m, Sukta: s, Text: text}
}

func scenarioCorpus() []models.Verse {
	return []models.Verse{
		verse(1, 1, "I Laud Agni, the chosen Priest"),
		verse(1, 1, "Worthy is Agni to be praised"),
		verse(1, 2, "Beautiful Vayu, come"),
		verse(2, 1, "Thou, Agni, shining in thy glory"),
		verse(2, 1, "Thine is the Herald's task"),
	}
}

func TestSearch(t *testing.T) {
	corpus := scenarioCorpus()

	tests := []struct {
		name  string
		query string
		want  []models.Verse
	}{
		{"case insensitive text", "agni", []models.Verse{corpus[0], corpus[1], corpus[3]}},
		{"upper case query", "VAYU", []models.Verse{corpus[2]}},
		{"sukta numeral", "2", []models.Verse{corpus[2], corpus[3], corpus[4]}},
		{"no match", "soma", []models.Verse{}},
		{"empty query matches all", "", corpus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Search(corpus, tt.query))
		})
	}
}

func TestSearchReturnsOrderedMatchingSubsequence(t *testing.T) {
	corpus := scenarioCorpus()
	for _, q := range []string{"a", "th", "1", "herald", "zz"} {
		got := Search(corpus, q)

		idx := 0
		for _, v := range got {
			for idx < len(corpus) && corpus[idx] != v {
				idx++
			}
			require.Less(t, idx, len(corpus), "result for %q is not a subsequence", q)
			idx++

			lq := strings.ToLower(q)
			assert.True(t,
				strings.Contains(strings.ToLower(v.Text), lq) ||
					strings.Contains(strconv.Itoa(v.Mandala), lq) ||
					strings.Contains(strconv.Itoa(v.Sukta), lq))
		}
	}
}

func TestSearchIsReproducible(t *testing.T) {
	corpus := scenarioCorpus()
	assert.Equal(t, Search(corpus, "agni"), Search(corpus, "agni"))
}

func TestByMandala(t *testing.T) {
	corpus := scenarioCorpus()

	assert.Equal(t, corpus[:3], ByMandala(corpus, 1))
	assert.Equal(t, corpus[3:], ByMandala(corpus, 2))
	assert.Empty(t, ByMandala(corpus, 3))
	assert.Empty(t, ByMandala(corpus, 0))
	assert.Empty(t, ByMandala(corpus, 42))

	for m := 0; m <= 3; m++ {
		others := 0
		for _, v := range corpus {
			if v.Mandala != m {
				others++
			}
		}
		assert.Equal(t, len(corpus), len(ByMandala(corpus, m))+others)
	}
}

func TestBySukta(t *testing.T) {
	corpus := scenarioCorpus()

	assert.Equal(t, []models.Verse{corpus[0], corpus[1]}, BySukta(corpus, 1, 1))
	assert.Equal(t, []models.Verse{corpus[2]}, BySukta(corpus, 1, 2))
	assert.Empty(t, BySukta(corpus, 2, 2))
	assert.Empty(t, BySukta(corpus, 3, 1))
}

func TestSampleSizes(t *testing.T) {
	corpus := scenarioCorpus()

	tests := []struct {
		count int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 3},
		{5, 5},
		{50, 5},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.count), func(t *testing.T) {
			got := Sample(corpus, tt.count)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSampleIsSubsetWithoutDuplicates(t *testing.T) {
	corpus := scenarioCorpus()
	before := slices.Clone(corpus)

	for i := 0; i < 20; i++ {
		got := Sample(corpus, 3)
		seen := make(map[models.Verse]bool)
		for _, v := range got {
			assert.Contains(t, corpus, v)
			assert.False(t, seen[v], "duplicate verse %+v", v)
			seen[v] = true
		}
	}

	full := Sample(corpus, len(corpus)+10)
	assert.ElementsMatch(t, corpus, full)
	assert.Equal(t, before, corpus, "input corpus must not be mutated")
}

func TestSampleWithSeed(t *testing.T) {
	corpus := scenarioCorpus()

	a := SampleWith(rand.New(rand.NewPCG(1, 2)), corpus, 4)
	b := SampleWith(rand.New(rand.NewPCG(1, 2)), corpus, 4)
	assert.Equal(t, a, b)
}

func TestMandalasAndSuktas(t *testing.T) {
	corpus := scenarioCorpus()

	assert.Equal(t, []int{1, 2}, Mandalas(corpus))
	assert.Equal(t, []int{1, 2}, Suktas(corpus, 1))
	assert.Equal(t, []int{1}, Suktas(corpus, 2))
	assert.Empty(t, Suktas(corpus, 9))
}
