package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harudiary/haru-backend/internal/config"
)

func testAIService(sttURL, aiURL, comicURL string) *AIService {
	return NewAIService(&config.Config{
		STTServiceURL:   sttURL,
		AIServiceURL:    aiURL,
		ComicServiceURL: comicURL,
		AITimeout:       5 * time.Second,
	})
}

func TestSpeechToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/speech-to-text" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "recording.webm" {
			t.Errorf("filename = %q, want recording.webm", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "today was a good day"})
	}))
	defer srv.Close()

	svc := testAIService(srv.URL, "", "")
	text, err := svc.SpeechToText(context.Background(), strings.NewReader("audio-bytes"), "recording.webm")
	if err != nil {
		t.Fatalf("SpeechToText: %v", err)
	}
	if text != "today was a good day" {
		t.Errorf("text = %q", text)
	}
}

func TestConvertToDiary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/diary/convert" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["text"] != "raw words" || req["user_id"] != "u1" {
			t.Errorf("request = %v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"diary_text": "Today I wrote raw words."})
	}))
	defer srv.Close()

	svc := testAIService("", srv.URL, "")
	text, err := svc.ConvertToDiary(context.Background(), "raw words", "u1")
	if err != nil {
		t.Fatalf("ConvertToDiary: %v", err)
	}
	if text != "Today I wrote raw words." {
		t.Errorf("text = %q", text)
	}
}

func TestAnalyzeEmotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"primary_emotion":       "joy",
			"primary_emotion_score": 0.91,
			"primary_emotion_emoji": "😊",
			"all_emotions": []map[string]interface{}{
				{"emotion": "joy", "score": 0.91, "emoji": "😊"},
				{"emotion": "neutral", "score": 0.05, "emoji": "😐"},
			},
			"confidence": 0.91,
		})
	}))
	defer srv.Close()

	svc := testAIService("", srv.URL, "")
	emotion, err := svc.AnalyzeEmotion(context.Background(), "great day", "u1")
	if err != nil {
		t.Fatalf("AnalyzeEmotion: %v", err)
	}
	if emotion.PrimaryEmotion != "joy" {
		t.Errorf("primary emotion = %q", emotion.PrimaryEmotion)
	}
	if len(emotion.AllEmotions) != 2 {
		t.Errorf("all emotions = %d", len(emotion.AllEmotions))
	}
}

func TestGenerateFeedbackDefaultsStyle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["style"] != "empathetic" {
			t.Errorf("style = %q", req["style"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"feedback_text": "That sounds wonderful.",
			"confidence":    0.8,
		})
	}))
	defer srv.Close()

	svc := testAIService("", srv.URL, "")
	fb, err := svc.GenerateFeedback(context.Background(), "great day", "joy", "u1")
	if err != nil {
		t.Fatalf("GenerateFeedback: %v", err)
	}
	if fb.FeedbackText != "That sounds wonderful." {
		t.Errorf("feedback = %q", fb.FeedbackText)
	}
	if fb.Style != "empathetic" {
		t.Errorf("style not defaulted, got %q", fb.Style)
	}
}

func TestGenerateComic(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":         true,
				"comic_image_url": "https://cdn.example.com/comic.png",
				"diary_text":      "polished text",
			})
		}))
		defer srv.Close()

		svc := testAIService("", "", srv.URL)
		url, text, err := svc.GenerateComic(context.Background(), "raw", "Mina", "female")
		if err != nil {
			t.Fatalf("GenerateComic: %v", err)
		}
		if url != "https://cdn.example.com/comic.png" || text != "polished text" {
			t.Errorf("url = %q, text = %q", url, text)
		}
	})

	t.Run("service reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
		}))
		defer srv.Close()

		svc := testAIService("", "", srv.URL)
		if _, _, err := svc.GenerateComic(context.Background(), "raw", "Mina", "female"); err == nil {
			t.Fatal("expected error when success is false")
		}
	})
}

func TestNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := testAIService("", srv.URL, "")
	if _, err := svc.ConvertToDiary(context.Background(), "text", "u1"); err == nil {
		t.Fatal("expected error on 503")
	}
}
