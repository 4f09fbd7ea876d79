// Package htmlsanitize cleans the profile bios that clients render as HTML.
//
// Only fields that carry markup go through here. Plain-text fields (chat
// messages, concerns, program descriptions) are stored as typed and escaped
// by whoever renders them.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce sync.Once
	ugc     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugc = bluemonday.UGCPolicy()
	})
	return ugc
}

// RichText keeps safe formatting and links, removes scripts, event handlers
// and other active content, and trims surrounding whitespace. The result is
// HTML.
func RichText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy().Sanitize(s))
}
