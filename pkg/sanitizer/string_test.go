package sanitizer

import "testing"

func TestNormalizeResourceName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Atlas Room  ",
			want:  "Atlas Room",
		},
		{
			name:  "multiple spaces between words",
			input: "Atlas    Room",
			want:  "Atlas Room",
		},
		{
			name:  "tabs and newlines",
			input: "Atlas\t\nRoom",
			want:  "Atlas Room",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Lounge™ ",
			want:  "Café & Lounge™",
		},
		{
			name:  "hebrew characters",
			input: " חדר ישיבות ",
			want:  "חדר ישיבות",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeResourceName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeResourceName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameForComparison(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "convert to lowercase",
			input: "Atlas Room",
			want:  "atlas room",
		},
		{
			name:  "collapse multiple spaces",
			input: "Atlas   Room",
			want:  "atlas room",
		},
		{
			name:  "preserve special chars but lowercase",
			input: "Café & Lounge™",
			want:  "café & lounge™",
		},
		{
			name:  "trim and lowercase",
			input: "  ATLAS  Café  ",
			want:  "atlas café",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNameForComparison(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeNameForComparison(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeResourceType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"room", "room"},
		{"  Desk ", "desk"},
		{"ROOM", "room"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeResourceType(tt.input); got != tt.want {
				t.Errorf("NormalizeResourceType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize_DropsControlCharacters(t *testing.T) {
	if got := TrimAndNormalize("Atlas\x00Room"); got != "AtlasRoom" {
		t.Errorf("TrimAndNormalize dropped nothing: %q", got)
	}
}
