package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/harudiary/haru-backend/internal/config"
	"github.com/harudiary/haru-backend/internal/models"
)

// AIService talks to the external AI endpoints: speech-to-text,
// raw-text conversion, emotion analysis, feedback generation and the
// comic renderer. Every call shares one http.Client whose timeout
// comes from AI_TIMEOUT.
type AIService struct {
	sttURL   string
	aiURL    string
	comicURL string
	client   *http.Client
}

func NewAIService(cfg *config.Config) *AIService {
	return &AIService{
		sttURL:   cfg.STTServiceURL,
		aiURL:    cfg.AIServiceURL,
		comicURL: cfg.ComicServiceURL,
		client:   &http.Client{Timeout: cfg.AITimeout},
	}
}

// SpeechToText transcribes an uploaded audio recording
func (s *AIService) SpeechToText(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sttURL+"/api/speech-to-text", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		Text string `json:"text"`
	}
	if err := s.do(req, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// ConvertToDiary turns raw transcribed speech into polished diary prose
func (s *AIService) ConvertToDiary(ctx context.Context, text, userID string) (string, error) {
	var result struct {
		DiaryText string `json:"diary_text"`
	}
	err := s.postJSON(ctx, s.aiURL+"/api/v1/diary/convert", map[string]string{
		"text":    text,
		"user_id": userID,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.DiaryText, nil
}

// AnalyzeEmotion classifies the dominant emotion of a diary text
func (s *AIService) AnalyzeEmotion(ctx context.Context, text, userID string) (*models.EmotionAnalysis, error) {
	var result models.EmotionAnalysis
	err := s.postJSON(ctx, s.aiURL+"/api/v1/emotion/analyze", map[string]string{
		"text":    text,
		"user_id": userID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateFeedback writes a short empathetic response to a diary entry
func (s *AIService) GenerateFeedback(ctx context.Context, text, emotion, userID string) (*models.AIFeedback, error) {
	var result models.AIFeedback
	err := s.postJSON(ctx, s.aiURL+"/api/v1/feedback/generate", map[string]string{
		"text":    text,
		"emotion": emotion,
		"style":   "empathetic",
		"user_id": userID,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Style == "" {
		result.Style = "empathetic"
	}
	return &result, nil
}

// GenerateComic renders a four-panel comic for the diary text and
// returns the hosted image URL plus the (possibly rewritten) diary text
func (s *AIService) GenerateComic(ctx context.Context, rawText, userName, gender string) (string, string, error) {
	var result struct {
		Success       bool   `json:"success"`
		ComicImageURL string `json:"comic_image_url"`
		DiaryText     string `json:"diary_text"`
	}
	err := s.postJSON(ctx, s.comicURL+"/api/diary-comic", map[string]string{
		"raw_text":  rawText,
		"user_name": userName,
		"gender":    gender,
	}, &result)
	if err != nil {
		return "", "", err
	}
	if !result.Success {
		return "", "", fmt.Errorf("comic service reported failure")
	}
	return result.ComicImageURL, result.DiaryText, nil
}

func (s *AIService) postJSON(ctx context.Context, url string, payload interface{}, dest interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, dest)
}

func (s *AIService) do(req *http.Request, dest interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("AI service returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
