package svg

import (
	"bytes"
	"errors"
	"regexp"
)

var (
	scriptTagPattern    = regexp.MustCompile(`(?is)<\s*script[\s>].*?<\s*/\s*script\s*>`)
	foreignObjPattern   = regexp.MustCompile(`(?is)<\s*foreignObject[\s>].*?<\s*/\s*foreignObject\s*>`)
	eventAttrPattern    = regexp.MustCompile(`(?is)\son[a-z]+\s*=\s*"[^"]*"`)
	scriptHrefPattern   = regexp.MustCompile(`(?is)(href|xlink:href)\s*=\s*"\s*javascript:[^"]*"`)
)

// Sanitize strips active content from an SVG document before it enters the
// ingestion pipeline. SVG is the only allow-listed extension that can carry
// executable payloads.
func Sanitize(input []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, errors.New("not an svg document")
	}

	clean := scriptTagPattern.ReplaceAll(input, nil)
	clean = foreignObjPattern.ReplaceAll(clean, nil)
	clean = eventAttrPattern.ReplaceAll(clean, nil)
	clean = scriptHrefPattern.ReplaceAll(clean, nil)

	return clean, nil
}
