package vedaweb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Version types reported by the document API.
const (
	TypeVersion     = "version"
	TypeTranslation = "translation"
)

// Document is a single stanza as returned by the VedaWeb document API.
type Document struct {
	ID            string    `json:"id"`
	Book          int       `json:"book"`
	Hymn          int       `json:"hymn"`
	Stanza        int       `json:"stanza"`
	HymnAddressee string    `json:"hymnAddressee,omitempty"`
	HymnGroup     string    `json:"hymnGroup,omitempty"`
	Strata        string    `json:"strata,omitempty"`
	Versions      []Version `json:"versions,omitempty"`
	Location      string    `json:"location,omitempty"`
}

// Version is one rendering of a stanza: an original-text edition or a
// translation.
type Version struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Language string `json:"language"`
	Form     Form   `json:"form"`
	Type     string `json:"type"`
}

// Form holds the lines of a version. The API sends either a single string
// or an array of strings.
type Form []string

// UnmarshalJSON accepts a string, an array of strings or null.
func (f *Form) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*f = nil
		return nil
	case strings.HasPrefix(trimmed, "["):
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("failed to decode form lines: %w", err)
		}
		*f = lines
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode form: %w", err)
		}
		*f = Form{s}
		return nil
	}
}

// Lines returns the form's lines.
func (f Form) Lines() []string {
	return []string(f)
}

// String joins the lines with newlines.
func (f Form) String() string {
	return strings.Join(f, "\n")
}

// Translations returns the versions of type "translation".
func Translations(versions []Version) []Version {
	return byType(versions, TypeTranslation)
}

// Originals returns the original-text versions.
func Originals(versions []Version) []Version {
	return byType(versions, TypeVersion)
}

func byType(versions []Version, typ string) []Version {
	out := []Version{}
	for _, v := range versions {
		if v.Type == typ {
			out = append(out, v)
		}
	}
	return out
}
