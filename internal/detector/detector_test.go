package detector

import (
	"testing"
)

func TestDetector_DetectInput(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty text",
			text: "",
			want: Unknown,
		},
		{
			name: "whitespace",
			text: "   ",
			want: Unknown,
		},
		{
			name: "english text",
			text: "Thank you for applying, unfortunately we chose another candidate.",
			want: "en",
		},
		{
			name: "russian text",
			text: "Спасибо за отклик, к сожалению, мы выбрали другого кандидата.",
			want: "ru",
		},
		{
			name: "spanish text",
			text: "Gracias por tu solicitud, lamentablemente elegimos a otro candidato.",
			want: "es",
		},
		{
			name: "german text is unsupported",
			text: "Vielen Dank für Ihre Bewerbung, leider haben wir uns für einen anderen Kandidaten entschieden.",
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DetectInput(tt.text); got != tt.want {
				t.Errorf("DetectInput(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("Hallo, das ist ein Test auf Deutsch.")
	if !ok || code != "de" {
		t.Errorf("DetectISO = %q, %v; want de, true", code, ok)
	}

	if _, ok := d.DetectISO(""); ok {
		t.Error("expected ok=false for empty text")
	}
}

func TestPickLang(t *testing.T) {
	tests := []struct {
		input string
		ui    string
		want  string
	}{
		{"en", "ru", "en"},
		{"es", "en", "es"},
		{Unknown, "en", "en"},
		{Unknown, "es", "es"},
		{Unknown, "de", "ru"},
		{Unknown, "", "ru"},
		{"de", "fr", "ru"},
	}
	for _, tt := range tests {
		if got := PickLang(tt.input, tt.ui); got != tt.want {
			t.Errorf("PickLang(%q, %q) = %q, want %q", tt.input, tt.ui, got, tt.want)
		}
	}
}
