package services

import (
	"context"
	"log"

	"github.com/harudiary/haru-backend/internal/models"
)

// Pipeline step names reported over the progress stream
const (
	StepComic    = "comic"
	StepConvert  = "convert"
	StepEmotion  = "emotion"
	StepFeedback = "feedback"
)

// Step statuses reported over the progress stream
const (
	StatusStarted  = "started"
	StatusDone     = "done"
	StatusFallback = "fallback"
)

// ProgressFunc receives step updates while a generation runs.
// It may be nil when the caller doesn't stream progress.
type ProgressFunc func(step, status string)

// GenerationResult is the combined output of one pipeline run.
type GenerationResult struct {
	DiaryText string                  `json:"diary_text"`
	Emotion   *models.EmotionAnalysis `json:"emotion_analysis"`
	Feedback  *models.AIFeedback      `json:"ai_feedback"`
	Comic     *models.ComicData       `json:"comic_data,omitempty"`
}

// GenerationService runs the diary AI pipeline: render the comic from
// the raw text, convert the text to diary prose, analyze its emotion,
// then generate feedback. Each step falls back to a local stand-in
// when the AI endpoint is down, so a generation always produces a
// usable result.
type GenerationService struct {
	ai *AIService
}

func NewGenerationService(ai *AIService) *GenerationService {
	return &GenerationService{ai: ai}
}

var emotionEmojis = map[string]string{
	"joy":      "😊",
	"sadness":  "😢",
	"anger":    "😠",
	"fear":     "😨",
	"surprise": "😲",
	"disgust":  "🤢",
	"neutral":  "😐",
}

// EmotionEmoji returns the emoji for an emotion label, defaulting to neutral
func EmotionEmoji(emotion string) string {
	if emoji, ok := emotionEmojis[emotion]; ok {
		return emoji
	}
	return emotionEmojis["neutral"]
}

// Generate runs the full pipeline on raw diary text. It never returns
// an error: failed steps are replaced with fallback content and
// reported via progress.
func (g *GenerationService) Generate(ctx context.Context, userID, userName, gender, rawText string, progress ProgressFunc) *GenerationResult {
	report := func(step, status string) {
		if progress != nil {
			progress(step, status)
		}
	}

	result := &GenerationResult{}

	// The comic renders from the raw text, so it goes first; its
	// caption falls back to the converted diary text below.
	report(StepComic, StatusStarted)
	comicURL, comicText, comicErr := g.ai.GenerateComic(ctx, rawText, userName, gender)
	comicOK := comicErr == nil && comicURL != ""
	if !comicOK {
		log.Printf("⚠️ Comic generation failed, skipping comic: %v", comicErr)
		report(StepComic, StatusFallback)
	} else {
		report(StepComic, StatusDone)
	}

	report(StepConvert, StatusStarted)
	diaryText, err := g.ai.ConvertToDiary(ctx, rawText, userID)
	if err != nil || diaryText == "" {
		log.Printf("⚠️ Diary conversion failed, keeping raw text: %v", err)
		diaryText = rawText
		report(StepConvert, StatusFallback)
	} else {
		report(StepConvert, StatusDone)
	}
	result.DiaryText = diaryText

	report(StepEmotion, StatusStarted)
	emotion, err := g.ai.AnalyzeEmotion(ctx, diaryText, userID)
	if err != nil || emotion == nil || emotion.PrimaryEmotion == "" {
		log.Printf("⚠️ Emotion analysis failed, using neutral: %v", err)
		emotion = fallbackEmotion()
		report(StepEmotion, StatusFallback)
	} else {
		if emotion.PrimaryEmotionEmoji == "" {
			emotion.PrimaryEmotionEmoji = EmotionEmoji(emotion.PrimaryEmotion)
		}
		report(StepEmotion, StatusDone)
	}
	result.Emotion = emotion

	report(StepFeedback, StatusStarted)
	feedback, err := g.ai.GenerateFeedback(ctx, diaryText, emotion.PrimaryEmotion, userID)
	if err != nil || feedback == nil || feedback.FeedbackText == "" {
		log.Printf("⚠️ Feedback generation failed, using canned response: %v", err)
		feedback = fallbackFeedback()
		report(StepFeedback, StatusFallback)
	} else {
		report(StepFeedback, StatusDone)
	}
	result.Feedback = feedback

	if comicOK {
		if comicText == "" {
			comicText = diaryText
		}
		result.Comic = &models.ComicData{
			Images:        []string{comicURL},
			GeneratedText: comicText,
		}
	}

	return result
}

func fallbackEmotion() *models.EmotionAnalysis {
	return &models.EmotionAnalysis{
		PrimaryEmotion:      "neutral",
		PrimaryEmotionScore: 0,
		PrimaryEmotionEmoji: emotionEmojis["neutral"],
		AllEmotions: []models.EmotionDetail{
			{Emotion: "neutral", Score: 0, Emoji: emotionEmojis["neutral"]},
		},
		Confidence: 0,
	}
}

func fallbackFeedback() *models.AIFeedback {
	return &models.AIFeedback{
		FeedbackText: "Thank you for sharing your day. Writing it down is already a meaningful step.",
		Style:        "empathetic",
		Confidence:   0,
	}
}
