package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestStyle_Apply(t *testing.T) {
	base := DefaultStyle()

	tests := []struct {
		name   string
		update StyleUpdate
		want   Style
	}{
		{
			name:   "empty update keeps everything",
			update: StyleUpdate{},
			want:   base,
		},
		{
			name:   "non-numeric font size is ignored",
			update: StyleUpdate{FontSize: strPtr("abc")},
			want:   base,
		},
		{
			name:   "zero font size is ignored",
			update: StyleUpdate{FontSize: strPtr("0")},
			want:   base,
		},
		{
			name:   "negative font size is ignored",
			update: StyleUpdate{FontSize: strPtr("-4")},
			want:   base,
		},
		{
			name:   "font size with spaces",
			update: StyleUpdate{FontSize: strPtr(" 24 ")},
			want:   Style{BackgroundColor: "#555555", TextColor: "#ffffff", FontSize: 24},
		},
		{
			name:   "colors only",
			update: StyleUpdate{BackgroundColor: strPtr("#000000"), TextColor: strPtr("#00ff00")},
			want:   Style{BackgroundColor: "#000000", TextColor: "#00ff00", FontSize: 18},
		},
		{
			name:   "blank color keeps prior value",
			update: StyleUpdate{TextColor: strPtr("  ")},
			want:   base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Apply(tt.update); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStyle_ApplyKeepsPreviousValidFontSize(t *testing.T) {
	s := DefaultStyle().Apply(StyleUpdate{FontSize: strPtr("30")})
	s = s.Apply(StyleUpdate{FontSize: strPtr("abc")})

	if s.FontSize != 30 {
		t.Errorf("expected font size 30 to survive, got %d", s.FontSize)
	}
	if s.BackgroundColor != "#555555" || s.TextColor != "#ffffff" {
		t.Errorf("colors changed unexpectedly: %+v", s)
	}
}
