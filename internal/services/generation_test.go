package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// aiStub serves all AI endpoints from one handler so pipeline tests can
// fail individual steps.
func aiStub(t *testing.T, failConvert, failEmotion, failFeedback, failComic bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/diary/convert":
			if failConvert {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"diary_text": "Polished diary text."})
		case "/api/v1/emotion/analyze":
			if failEmotion {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"primary_emotion":       "joy",
				"primary_emotion_score": 0.9,
				"confidence":            0.9,
			})
		case "/api/v1/feedback/generate":
			if failFeedback {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"feedback_text": "Sounds like a lovely day.",
				"style":         "empathetic",
				"confidence":    0.8,
			})
		case "/api/diary-comic":
			if failComic {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":         true,
				"comic_image_url": "https://cdn.example.com/comic.png",
				"diary_text":      "Comic caption text.",
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

type progressRecorder struct {
	events []string
}

func (p *progressRecorder) record(step, status string) {
	p.events = append(p.events, step+":"+status)
}

func TestGenerateAllStepsSucceed(t *testing.T) {
	srv := aiStub(t, false, false, false, false)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	var progress progressRecorder
	result := gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", progress.record)

	if result.DiaryText != "Polished diary text." {
		t.Errorf("diary text = %q", result.DiaryText)
	}
	if result.Emotion == nil || result.Emotion.PrimaryEmotion != "joy" {
		t.Errorf("emotion = %+v", result.Emotion)
	}
	if result.Emotion.PrimaryEmotionEmoji != "😊" {
		t.Errorf("emoji not filled in, got %q", result.Emotion.PrimaryEmotionEmoji)
	}
	if result.Feedback == nil || result.Feedback.FeedbackText != "Sounds like a lovely day." {
		t.Errorf("feedback = %+v", result.Feedback)
	}
	if result.Comic == nil || len(result.Comic.Images) != 1 {
		t.Fatalf("comic = %+v", result.Comic)
	}
	if result.Comic.Images[0] != "https://cdn.example.com/comic.png" {
		t.Errorf("comic url = %q", result.Comic.Images[0])
	}

	want := []string{
		"comic:started", "comic:done",
		"convert:started", "convert:done",
		"emotion:started", "emotion:done",
		"feedback:started", "feedback:done",
	}
	if len(progress.events) != len(want) {
		t.Fatalf("events = %v", progress.events)
	}
	for i, e := range want {
		if progress.events[i] != e {
			t.Errorf("event[%d] = %q, want %q", i, progress.events[i], e)
		}
	}
}

func TestGenerateConvertFallsBackToRawText(t *testing.T) {
	srv := aiStub(t, true, false, false, false)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	var progress progressRecorder
	result := gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", progress.record)

	if result.DiaryText != "raw words" {
		t.Errorf("diary text = %q, want raw input", result.DiaryText)
	}
	if progress.events[3] != "convert:fallback" {
		t.Errorf("events = %v", progress.events)
	}
	// later steps still run against the raw text
	if result.Emotion == nil || result.Emotion.PrimaryEmotion != "joy" {
		t.Errorf("emotion = %+v", result.Emotion)
	}
}

func TestGenerateEmotionFallsBackToNeutral(t *testing.T) {
	srv := aiStub(t, false, true, false, false)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	result := gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", nil)

	if result.Emotion.PrimaryEmotion != "neutral" {
		t.Errorf("emotion = %q", result.Emotion.PrimaryEmotion)
	}
	if result.Emotion.PrimaryEmotionEmoji != "😐" {
		t.Errorf("emoji = %q", result.Emotion.PrimaryEmotionEmoji)
	}
	// feedback is generated against the fallback emotion
	if result.Feedback == nil || result.Feedback.FeedbackText == "" {
		t.Errorf("feedback = %+v", result.Feedback)
	}
}

func TestGenerateFeedbackFallsBackToCanned(t *testing.T) {
	srv := aiStub(t, false, false, true, false)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	result := gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", nil)

	if result.Feedback == nil || result.Feedback.FeedbackText == "" {
		t.Fatalf("feedback = %+v", result.Feedback)
	}
	if result.Feedback.Style != "empathetic" {
		t.Errorf("style = %q", result.Feedback.Style)
	}
}

func TestGenerateComicFailureSkipsComic(t *testing.T) {
	srv := aiStub(t, false, false, false, true)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	var progress progressRecorder
	result := gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", progress.record)

	if result.Comic != nil {
		t.Errorf("comic = %+v, want nil", result.Comic)
	}
	if progress.events[1] != "comic:fallback" {
		t.Errorf("events = %v", progress.events)
	}
	// the rest of the result is intact
	if result.DiaryText != "Polished diary text." || result.Feedback == nil {
		t.Errorf("result = %+v", result)
	}
}

func TestGenerateComicRunsBeforeConvert(t *testing.T) {
	srv := aiStub(t, false, false, false, false)
	defer srv.Close()

	gen := NewGenerationService(testAIService(srv.URL, srv.URL, srv.URL))
	var progress progressRecorder
	gen.Generate(context.Background(), "u1", "Mina", "female", "raw words", progress.record)

	comicAt, convertAt := -1, -1
	for i, e := range progress.events {
		switch e {
		case "comic:started":
			comicAt = i
		case "convert:started":
			convertAt = i
		}
	}
	if comicAt == -1 || convertAt == -1 {
		t.Fatalf("events = %v", progress.events)
	}
	if comicAt > convertAt {
		t.Errorf("comic step runs after convert: %v", progress.events)
	}
}

func TestEmotionEmoji(t *testing.T) {
	if EmotionEmoji("joy") != "😊" {
		t.Error("joy emoji wrong")
	}
	if EmotionEmoji("unknown-label") != "😐" {
		t.Error("unknown label should map to neutral")
	}
}
