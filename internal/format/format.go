// Package format classifies a downloaded report body by inspecting its
// content. The service does not reliably set a content-type header, so the
// detector sniffs leading bytes and structural markers instead.
package format

import (
	"bytes"
	"encoding/xml"
	"unicode"
	"unicode/utf8"
)

// Format is the detected shape of a downloaded report body.
type Format string

const (
	XML     Format = "xml"
	CSV     Format = "csv"
	HTML    Format = "html"
	Unknown Format = "unknown"
)

// Ext returns the filename extension for the format. Unknown content is
// persisted with a generic extension.
func (f Format) Ext() string {
	if f == Unknown {
		return "txt"
	}
	return string(f)
}

// sniffLen bounds how much of the body the text heuristics look at.
const sniffLen = 100

// Detect classifies data by content. Predicates run in priority order: XML,
// HTML, CSV, then Unknown. Unknown is a valid outcome, not an error.
func Detect(data []byte) Format {
	switch {
	case isXML(data):
		return XML
	case isHTML(data):
		return HTML
	case isCSV(data):
		return CSV
	default:
		return Unknown
	}
}

func isXML(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return true
	}
	// Statement bodies may omit the declaration; accept any well-formed
	// document rooted in the flex response element.
	var doc struct {
		XMLName xml.Name `xml:"FlexQueryResponse"`
	}
	return xml.Unmarshal(trimmed, &doc) == nil
}

func isHTML(data []byte) bool {
	head := bytes.TrimSpace(sniff(data))
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html"))
}

func isCSV(data []byte) bool {
	head := sniff(data)
	if !isPrintableText(head) {
		return false
	}
	return bytes.ContainsAny(head, ",;")
}

func sniff(data []byte) []byte {
	if len(data) > sniffLen {
		return data[:sniffLen]
	}
	return data
}

// isPrintableText reports whether head looks like text rather than binary:
// valid UTF-8 with no control characters besides whitespace.
func isPrintableText(head []byte) bool {
	if !utf8.Valid(head) {
		return false
	}
	for _, r := range string(head) {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
