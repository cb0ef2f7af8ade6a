package domain

import (
	"strconv"
	"strings"
)

// Style holds display preferences for one user.
type Style struct {
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        int    `json:"font_size"`
}

// StyleUpdate is a partial style change. Nil or blank fields keep the prior value.
type StyleUpdate struct {
	BackgroundColor *string
	TextColor       *string
	FontSize        *string
}

// DefaultStyle returns the style used before a user changes anything.
func DefaultStyle() Style {
	return Style{
		BackgroundColor: "#555555",
		TextColor:       "#ffffff",
		FontSize:        18,
	}
}

// Apply merges u over s. A font size that is not a positive integer is ignored.
func (s Style) Apply(u StyleUpdate) Style {
	if v, ok := nonBlank(u.BackgroundColor); ok {
		s.BackgroundColor = v
	}
	if v, ok := nonBlank(u.TextColor); ok {
		s.TextColor = v
	}
	if v, ok := nonBlank(u.FontSize); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.FontSize = n
		}
	}
	return s
}

func nonBlank(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}
