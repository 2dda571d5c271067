package sanitizer

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLStripperer removes all HTML markup from user supplied strings.
type HTMLStripperer interface {
	StripHTML(s string) string
}

type HTMLStripper struct {
	bm *bluemonday.Policy
}

func NewHTMLStripper() *HTMLStripper {
	return &HTMLStripper{bm: bluemonday.StrictPolicy()}
}

func (h *HTMLStripper) StripHTML(s string) string {
	return strings.TrimSpace(h.bm.Sanitize(s))
}
