package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harudiary/haru-backend/internal/database"
	"github.com/harudiary/haru-backend/internal/models"
	"github.com/harudiary/haru-backend/internal/services"
)

// emotionColors maps each emotion label to its calendar tile color
var emotionColors = map[string]string{
	"joy":      "#FFE27A",
	"sadness":  "#A7C7E7",
	"anger":    "#F79B8B",
	"fear":     "#C5A8D2",
	"surprise": "#C4F3E2",
	"disgust":  "#D3F07D",
	"neutral":  "#E2DFD7",
}

// EmotionColor returns the tile color for an emotion, defaulting to neutral
func EmotionColor(emotion string) string {
	if c, ok := emotionColors[emotion]; ok {
		return c
	}
	return emotionColors["neutral"]
}

type CalendarDay struct {
	Date    string `json:"date"` // YYYY-MM-DD
	DiaryID string `json:"diary_id"`
	Emotion string `json:"emotion"`
	Emoji   string `json:"emoji"`
	Color   string `json:"color"`
}

type CalendarResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Days    []CalendarDay `json:"days"`
}

// GetCalendar returns one emotion-colored tile per diary day in the
// requested month
func GetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, CalendarResponse{Success: false, Message: "Authentication required", Days: []CalendarDay{}})
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if s := r.URL.Query().Get("year"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1970 || parsed > 2100 {
			writeJSON(w, http.StatusBadRequest, CalendarResponse{Success: false, Message: "Invalid year", Days: []CalendarDay{}})
			return
		}
		year = parsed
	}
	if s := r.URL.Query().Get("month"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 || parsed > 12 {
			writeJSON(w, http.StatusBadRequest, CalendarResponse{Success: false, Message: "Invalid month", Days: []CalendarDay{}})
			return
		}
		month = parsed
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(DiaryCollection).Find(ctx, bson.M{
		"user_id_string": userID,
		"date":           bson.M{"$gte": start, "$lt": end},
	}, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, CalendarResponse{Success: false, Message: "Failed to load calendar", Days: []CalendarDay{}})
		return
	}
	defer cursor.Close(ctx)

	var diaries []models.Diary
	if err = cursor.All(ctx, &diaries); err != nil {
		writeJSON(w, http.StatusInternalServerError, CalendarResponse{Success: false, Message: "Failed to load calendar", Days: []CalendarDay{}})
		return
	}

	days := make([]CalendarDay, 0, len(diaries))
	for _, d := range diaries {
		emotion := "neutral"
		emoji := services.EmotionEmoji(emotion)
		if d.EmotionAnalysis != nil && d.EmotionAnalysis.PrimaryEmotion != "" {
			emotion = d.EmotionAnalysis.PrimaryEmotion
			emoji = d.EmotionAnalysis.PrimaryEmotionEmoji
			if emoji == "" {
				emoji = services.EmotionEmoji(emotion)
			}
		}
		days = append(days, CalendarDay{
			Date:    d.Date.Format("2006-01-02"),
			DiaryID: d.ID.Hex(),
			Emotion: emotion,
			Emoji:   emoji,
			Color:   EmotionColor(emotion),
		})
	}

	writeJSON(w, http.StatusOK, CalendarResponse{
		Success: true,
		Year:    year,
		Month:   month,
		Days:    days,
	})
}

type EmotionCount struct {
	Emotion    string  `json:"emotion"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Emoji      string  `json:"emoji"`
	Color      string  `json:"color"`
}

type StatisticsResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Days     int            `json:"days"`
	Total    int            `json:"total"`
	Emotions []EmotionCount `json:"emotions"`
}

// GetStatistics aggregates the emotion distribution over the last N
// days (default 30). Results are cached per user and window.
func GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, StatisticsResponse{Success: false, Message: "Authentication required", Emotions: []EmotionCount{}})
		return
	}

	days := 30
	if s := r.URL.Query().Get("days"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 || parsed > 365 {
			writeJSON(w, http.StatusBadRequest, StatisticsResponse{Success: false, Message: "days must be between 1 and 365", Emotions: []EmotionCount{}})
			return
		}
		days = parsed
	}

	cacheKey := services.CacheKey("statistics", fmt.Sprintf("%s:%d", userID, days))
	var cached StatisticsResponse
	if hit, _ := services.Cache.Get(cacheKey, &cached); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	since := time.Now().AddDate(0, 0, -days)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(DiaryCollection).Find(ctx, bson.M{
		"user_id_string": userID,
		"date":           bson.M{"$gte": since},
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StatisticsResponse{Success: false, Message: "Failed to load statistics", Emotions: []EmotionCount{}})
		return
	}
	defer cursor.Close(ctx)

	var diaries []models.Diary
	if err = cursor.All(ctx, &diaries); err != nil {
		writeJSON(w, http.StatusInternalServerError, StatisticsResponse{Success: false, Message: "Failed to load statistics", Emotions: []EmotionCount{}})
		return
	}

	counts := map[string]int{}
	total := 0
	for _, d := range diaries {
		if d.EmotionAnalysis == nil || d.EmotionAnalysis.PrimaryEmotion == "" {
			continue
		}
		counts[d.EmotionAnalysis.PrimaryEmotion]++
		total++
	}

	emotions := make([]EmotionCount, 0, len(counts))
	for _, label := range []string{"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral"} {
		count, ok := counts[label]
		if !ok {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		emotions = append(emotions, EmotionCount{
			Emotion:    label,
			Count:      count,
			Percentage: pct,
			Emoji:      services.EmotionEmoji(label),
			Color:      EmotionColor(label),
		})
	}

	resp := StatisticsResponse{
		Success:  true,
		Days:     days,
		Total:    total,
		Emotions: emotions,
	}
	services.Cache.Set(cacheKey, resp)

	writeJSON(w, http.StatusOK, resp)
}
