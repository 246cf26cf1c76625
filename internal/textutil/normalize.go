package textutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnicodeForm selects the Unicode normalization applied to cue text.
type UnicodeForm string

const (
	FormNone UnicodeForm = "none"
	FormNFC  UnicodeForm = "nfc"
	FormNFKC UnicodeForm = "nfkc"
)

// ParseUnicodeForm maps a configuration value onto a UnicodeForm.
func ParseUnicodeForm(value string) (UnicodeForm, error) {
	switch UnicodeForm(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormNone:
		return FormNone, nil
	case FormNFC:
		return FormNFC, nil
	case FormNFKC:
		return FormNFKC, nil
	default:
		return FormNone, fmt.Errorf("unknown unicode form %q", value)
	}
}

var lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// NormalizeCueText replaces line breaks with spaces, collapses runs of spaces
// and trims the result.
func NormalizeCueText(text string, form UnicodeForm) string {
	text = lineBreakReplacer.Replace(text)
	switch form {
	case FormNFC:
		text = norm.NFC.String(text)
	case FormNFKC:
		text = norm.NFKC.String(text)
	}
	return collapseSpaces(text)
}

func collapseSpaces(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
