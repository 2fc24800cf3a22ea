package main

import (
	"fmt"
	"strings"

	"rigveda-rag/internal/models"
	"rigveda-rag/internal/vedaweb"
)

func formatVerse(v models.Verse) string {
	return fmt.Sprintf("[%d.%d] %s", v.Mandala, v.Sukta, v.Text)
}

func formatAnswer(response *models.Response) string {
	var sb strings.Builder

	sb.WriteString(response.Answer)
	sb.WriteString("\n\n")

	if len(response.Sources) > 0 {
		sb.WriteString("Sources:\n")
		for i, source := range response.Sources {
			sb.WriteString(fmt.Sprintf("  %d. [Mandala %d, Sukta %d]\n", i+1, source.Mandala, source.Sukta))
		}
	}

	return sb.String()
}

func formatDocument(doc *vedaweb.Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Rigveda %d.%d.%d", doc.Book, doc.Hymn, doc.Stanza)
	if doc.HymnAddressee != "" {
		fmt.Fprintf(&sb, " (to %s)", doc.HymnAddressee)
	}
	sb.WriteString("\n")

	writeVersions := func(title string, versions []vedaweb.Version) {
		if len(versions) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", title)
		for _, v := range versions {
			fmt.Fprintf(&sb, "  %s [%s]\n", v.Source, v.Language)
			for _, line := range v.Form.Lines() {
				fmt.Fprintf(&sb, "    %s\n", line)
			}
		}
	}
	writeVersions("Original", vedaweb.Originals(doc.Versions))
	writeVersions("Translations", vedaweb.Translations(doc.Versions))

	return sb.String()
}

func formatQuestion(q models.QuizQuestion) string {
	var sb strings.Builder

	sb.WriteString(q.Question)
	if q.Mandala > 0 {
		fmt.Fprintf(&sb, " (Mandala %d", q.Mandala)
		if q.Sukta > 0 {
			fmt.Fprintf(&sb, ", Sukta %d", q.Sukta)
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, opt)
	}

	return sb.String()
}
