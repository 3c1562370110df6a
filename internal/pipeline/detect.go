package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"stockdiff/internal"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	htmlMarkers = []string{"<table", "<html", "<!doctype html"}
	mailHeaders = []string{"mime-version:", "content-type: multipart/", "received:", "message-id:"}

	ErrLegacyXLS = errors.New("binary .xls (Excel 97-2003) is not supported, re-save the file as .xlsx")
)

// DetectFormat decides how to read a file. Content wins over the extension:
// several inventory tools export HTML tables under an .xls name.
func DetectFormat(name string, head []byte) (internal.InputFormat, error) {
	ext := strings.ToLower(filepath.Ext(name))

	if bytes.HasPrefix(head, zipMagic) {
		return internal.FormatXLSX, nil
	}
	if bytes.HasPrefix(head, oleMagic) {
		return "", fmt.Errorf("%s: %w", name, ErrLegacyXLS)
	}

	text := strings.ToLower(string(bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")))
	if ext == ".eml" || looksLikeMail(text) {
		return internal.FormatEML, nil
	}
	if strings.HasPrefix(text, "<") {
		for _, marker := range htmlMarkers {
			if strings.Contains(text, marker) {
				return internal.FormatHTML, nil
			}
		}
	}

	switch ext {
	case ".xlsx", ".xlsm":
		return internal.FormatXLSX, nil
	case ".html", ".htm", ".xls":
		return internal.FormatHTML, nil
	case ".csv", ".txt", "":
		return internal.FormatCSV, nil
	default:
		return "", fmt.Errorf("%s: unsupported input type %q", name, ext)
	}
}

func looksLikeMail(text string) bool {
	hits := 0
	for _, h := range mailHeaders {
		if strings.HasPrefix(text, h) || strings.Contains(text, "\n"+h) {
			hits++
		}
	}
	return hits >= 2
}
