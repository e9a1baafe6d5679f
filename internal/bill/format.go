package bill

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const isoDate = "2006-01-02"

// French short month names, as printed by the fr locale
var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// FormatDate renders an ISO date for display, e.g. "2004-04-04" becomes "4 Avr. 04"
func FormatDate(iso string) (string, error) {
	d, err := time.Parse(isoDate, strings.TrimSpace(iso))
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidDate, iso, err)
	}

	// A Caser keeps state, so each call gets its own.
	month := []rune(cases.Title(language.French).String(frenchMonths[d.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}
	year := fmt.Sprintf("%04d", d.Year())

	return fmt.Sprintf("%d %s. %s", d.Day(), strings.TrimSuffix(string(month), "."), year[2:]), nil
}

// FormatStatus maps a status to its display label. Unknown values are returned unchanged.
func FormatStatus(status Status) string {
	switch status {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return string(status)
	}
}
