package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityStyleRenders(t *testing.T) {
	for _, sev := range []string{"high", "medium", "low", "unknown"} {
		t.Run(sev, func(t *testing.T) {
			assert.Contains(t, SeverityStyle(sev).Render("test"), "test")
		})
	}
}

func TestVerdictStyleRenders(t *testing.T) {
	for _, v := range []string{"scam", "suspicious", "safe", ""} {
		assert.Contains(t, VerdictStyle(v).Render("verdict"), "verdict")
	}
}

func TestStylesRender(t *testing.T) {
	for _, s := range []interface{ Render(...string) string }{
		TitleStyle, HeaderStyle, BorderStyle, SelectedStyle, CursorStyle, HelpStyle, ErrorStyle,
	} {
		assert.Contains(t, s.Render("text"), "text")
	}
}
