// Package query filters, searches and samples an in-memory verse corpus.
// Every function is pure: the corpus is supplied by the caller and never
// modified. Only Sample is nondeterministic.
package query

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"rigveda-rag/internal/models"
)

// Search returns the verses whose text, mandala number or sukta number
// contains q, ignoring case. An empty q matches every verse.
func Search(corpus []models.Verse, q string) []models.Verse {
	lowerQuery := strings.ToLower(q)
	return filter(corpus, func(v models.Verse) bool {
		return strings.Contains(strings.ToLower(v.Text), lowerQuery) ||
			strings.Contains(strconv.Itoa(v.Mandala), lowerQuery) ||
			strings.Contains(strconv.Itoa(v.Sukta), lowerQuery)
	})
}

// ByMandala returns the verses of mandala m.
func ByMandala(corpus []models.Verse, m int) []models.Verse {
	return filter(corpus, func(v models.Verse) bool {
		return v.Mandala == m
	})
}

// BySukta returns the verses of sukta s in mandala m.
func BySukta(corpus []models.Verse, m, s int) []models.Verse {
	return filter(corpus, func(v models.Verse) bool {
		return v.Mandala == m && v.Sukta == s
	})
}

// Sample returns min(n, len(corpus)) distinct verses in random order.
func Sample(corpus []models.Verse, n int) []models.Verse {
	return SampleWith(nil, corpus, n)
}

// SampleWith is Sample drawing from r. A nil r uses the global source.
func SampleWith(r *rand.Rand, corpus []models.Verse, n int) []models.Verse {
	if n <= 0 {
		return []models.Verse{}
	}

	shuffled := make([]models.Verse, len(corpus))
	copy(shuffled, corpus)

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if r != nil {
		r.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// Mandalas lists the distinct mandala numbers in first-seen order.
func Mandalas(corpus []models.Verse) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range corpus {
		if !seen[v.Mandala] {
			seen[v.Mandala] = true
			out = append(out, v.Mandala)
		}
	}
	return out
}

// Suktas lists the distinct sukta numbers of mandala m in first-seen order.
func Suktas(corpus []models.Verse, m int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range corpus {
		if v.Mandala == m && !seen[v.Sukta] {
			seen[v.Sukta] = true
			out = append(out, v.Sukta)
		}
	}
	return out
}

func filter(corpus []models.Verse, keep func(models.Verse) bool) []models.Verse {
	out := []models.Verse{}
	for _, v := range corpus {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
