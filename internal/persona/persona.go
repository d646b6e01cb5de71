// Package persona loads the identity material Emissary speaks from.
//
// A persona is built once at startup from a display name, a plain-text
// summary, and a PDF export of the person's profile. It is shared
// read-only by every chat turn.
package persona

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

// Persona is the static identity context the model is conditioned on.
type Persona struct {
	// Name is the display name of the person being represented.
	Name string

	// Summary is the plain-text career summary.
	Summary string

	// Profile is the text extracted from the profile PDF.
	Profile string
}

// Load reads the summary and profile documents and returns the persona.
func Load(name, summaryPath, profilePath string) (*Persona, error) {
	if name == "" {
		return nil, apperrors.User(apperrors.CodeConfigInvalid, "persona name is required")
	}

	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePersonaLoadFailed,
			"reading summary file", apperrors.CategorySystem)
	}

	profile, err := extractPDFText(profilePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePersonaLoadFailed,
			"extracting profile PDF", apperrors.CategorySystem)
	}

	return &Persona{
		Name:    name,
		Summary: strings.TrimSpace(string(summary)),
		Profile: profile,
	}, nil
}

// extractPDFText concatenates the plain text of every page.
// Image-only or unreadable pages are skipped.
func extractPDFText(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	n := rdr.NumPage()
	for i := 1; i <= n; i++ {
		pg := rdr.Page(i)
		if pg.V.IsNull() {
			continue
		}
		txt, err := pg.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(txt)
	}

	return strings.TrimSpace(sb.String()), nil
}
