// Package intake validates uploaded documents against the active mode and
// prepares plain images for extraction.
package intake

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spherical/text-extractor/internal/domain"
)

// genericMIME is what browsers and multipart clients send when they do not know the type.
const genericMIME = "application/octet-stream"

// Validator checks documents against a mode's accepted pattern.
type Validator struct {
	msgs *domain.Messages
}

// NewValidator creates a new validator instance
func NewValidator(msgs *domain.Messages) *Validator {
	return &Validator{msgs: msgs}
}

// Validate reports a ValidationError when the document's declared MIME type
// does not match the mode's accept pattern.
func (v *Validator) Validate(doc domain.UploadedDocument, cfg domain.ModeConfig) error {
	if !MatchAccept(doc.MimeType, cfg.Accept) {
		return domain.ValidationError(v.msgs.Get(domain.MsgInvalidFileType, cfg.Accept), nil)
	}
	return nil
}

// MatchAccept matches a MIME type against an accept pattern. The pattern may be
// a comma-separated list; each entry is an exact type or a "type/*" wildcard.
func MatchAccept(mimeType, pattern string) bool {
	mimeType = normalize(mimeType)
	if mimeType == "" {
		return false
	}
	for _, p := range strings.Split(pattern, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "":
			continue
		case p == "*/*" || p == "*":
			return true
		case strings.HasSuffix(p, "/*"):
			if strings.HasPrefix(mimeType, strings.TrimSuffix(p, "*")) {
				return true
			}
		case p == mimeType:
			return true
		}
	}
	return false
}

// DeclaredOrDetected returns declared unless it is empty or generic, in which
// case the type is sniffed from content.
func DeclaredOrDetected(declared string, head []byte) string {
	if d := normalize(declared); d != "" && d != genericMIME {
		return d
	}
	return DetectMIME(head)
}

// DetectMIME sniffs the MIME type of data, without parameters.
func DetectMIME(data []byte) string {
	return normalize(mimetype.Detect(data).String())
}

// normalize lowercases a MIME type and strips parameters such as charset.
func normalize(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
