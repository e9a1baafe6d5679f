package bill

import (
	"regexp"
	"strings"
)

const (
	// InvalidReceiptMessage is shown in the receipt modal when a URL cannot be displayed
	InvalidReceiptMessage = "Format justificatif invalide (format autorisé : JPG, JPEG, PNG)."

	// InvalidFileMessage is alerted when the selected receipt file has the wrong type
	InvalidFileMessage = "Format de fichier invalide : seuls les fichiers JPG, JPEG et PNG sont acceptés."
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// nullSuffix matches receipt URLs ending in /null, left behind when the upload never stored a file
var nullSuffix = regexp.MustCompile(`(?i)/null(\?.*)?$`)

// ReceiptVerdict is the outcome of checking a receipt URL
type ReceiptVerdict int

const (
	ReceiptValid ReceiptVerdict = iota
	ReceiptMissing
	ReceiptNullSuffix
	ReceiptBadExtension
)

// Valid reports whether the receipt can be displayed
func (v ReceiptVerdict) Valid() bool {
	return v == ReceiptValid
}

func (v ReceiptVerdict) String() string {
	switch v {
	case ReceiptValid:
		return "valid"
	case ReceiptMissing:
		return "missing"
	case ReceiptNullSuffix:
		return "null-suffix"
	case ReceiptBadExtension:
		return "bad-extension"
	default:
		return "unknown"
	}
}

// CheckReceiptURL classifies a receipt URL. The first matching rule wins.
// A URL without any dot is treated as extension-less and allowed.
func CheckReceiptURL(url string) ReceiptVerdict {
	if url == "" || url == "null" || url == "undefined" {
		return ReceiptMissing
	}
	if nullSuffix.MatchString(url) {
		return ReceiptNullSuffix
	}

	path, _, _ := strings.Cut(url, "?")
	if i := strings.LastIndex(path, "."); i >= 0 {
		if !allowedExtensions[strings.ToLower(path[i+1:])] {
			return ReceiptBadExtension
		}
	}
	return ReceiptValid
}

// Extension returns the lower-cased text after the last dot of name,
// or the whole lower-cased name when it has no dot
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// AllowedFile reports whether a receipt file name has an accepted image extension
func AllowedFile(name string) bool {
	return allowedExtensions[Extension(name)]
}
