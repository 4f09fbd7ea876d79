package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/facultrack/internal/app/system/htmlsanitize"
)

func TestRichText_Empty(t *testing.T) {
	if got := htmlsanitize.RichText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestRichText_KeepsFormatting(t *testing.T) {
	in := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.RichText(in); got != in {
		t.Errorf("expected formatting kept, got %q", got)
	}
}

func TestRichText_RemovesScript(t *testing.T) {
	if got := htmlsanitize.RichText("Hello<script>alert('xss')</script>"); got != "Hello" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestRichText_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.RichText(`<a href="https://example.com" onclick="evil()">site</a>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick removed, got %q", got)
	}
	if !strings.Contains(got, ">site</a>") {
		t.Errorf("expected link kept, got %q", got)
	}
}

func TestRichText_RemovesJavascriptURLs(t *testing.T) {
	got := htmlsanitize.RichText(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(got, "javascript") {
		t.Errorf("expected javascript URL removed, got %q", got)
	}
}

func TestRichText_Trims(t *testing.T) {
	if got := htmlsanitize.RichText("  <b>hi</b>  "); got != "<b>hi</b>" {
		t.Errorf("expected trimmed HTML, got %q", got)
	}
}
