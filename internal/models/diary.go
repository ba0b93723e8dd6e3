package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmotionAnalysis is the AI emotion result attached to a diary entry.
type EmotionAnalysis struct {
	PrimaryEmotion      string          `bson:"primary_emotion" json:"primary_emotion"`
	PrimaryEmotionScore float64         `bson:"primary_emotion_score" json:"primary_emotion_score"`
	PrimaryEmotionEmoji string          `bson:"primary_emotion_emoji" json:"primary_emotion_emoji"`
	AllEmotions         []EmotionDetail `bson:"all_emotions" json:"all_emotions"`
	Confidence          float64         `bson:"confidence" json:"confidence"`
}

// EmotionDetail is one emotion with its score in an analysis result.
type EmotionDetail struct {
	Emotion string  `bson:"emotion" json:"emotion"`
	Score   float64 `bson:"score" json:"score"`
	Emoji   string  `bson:"emoji" json:"emoji"`
}

// AIFeedback is the generated feedback text attached to a diary entry.
type AIFeedback struct {
	FeedbackText string  `bson:"feedback_text" json:"feedback_text"`
	Style        string  `bson:"style" json:"style"`
	Confidence   float64 `bson:"confidence" json:"confidence"`
}

// ComicData holds the generated four-panel comic for a diary entry.
type ComicData struct {
	Images        []string `bson:"images" json:"images"`
	GeneratedText string   `bson:"generated_text" json:"generated_text"`
}

// Diary represents one diary entry for a user.
type Diary struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	UserIDString string    `bson:"user_id_string" json:"user_id,omitempty"`
	Date         time.Time `bson:"date" json:"date"`
	Text         string    `bson:"text" json:"text"`
	Weather      string    `bson:"weather,omitempty" json:"weather,omitempty"`
	Bookmarked   bool      `bson:"bookmarked" json:"bookmarked"`

	EmotionAnalysis *EmotionAnalysis `bson:"emotion_analysis,omitempty" json:"emotion_analysis,omitempty"`
	AIFeedback      *AIFeedback      `bson:"ai_feedback,omitempty" json:"ai_feedback,omitempty"`
	ComicData       *ComicData       `bson:"comic_data,omitempty" json:"comic_data,omitempty"`
}
