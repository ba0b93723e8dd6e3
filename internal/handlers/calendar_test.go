package handlers

import "testing"

func TestEmotionColor(t *testing.T) {
	cases := map[string]string{
		"joy":      "#FFE27A",
		"sadness":  "#A7C7E7",
		"anger":    "#F79B8B",
		"fear":     "#C5A8D2",
		"surprise": "#C4F3E2",
		"disgust":  "#D3F07D",
		"neutral":  "#E2DFD7",
	}
	for emotion, want := range cases {
		if got := EmotionColor(emotion); got != want {
			t.Errorf("EmotionColor(%q) = %q, want %q", emotion, got, want)
		}
	}

	if got := EmotionColor("melancholy"); got != "#E2DFD7" {
		t.Errorf("unknown emotion color = %q, want neutral", got)
	}
}
