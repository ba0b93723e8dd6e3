package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harudiary/haru-backend/internal/database"
	"github.com/harudiary/haru-backend/internal/models"
	"github.com/harudiary/haru-backend/internal/services"
)

const DiaryCollection = "diaries"

// requireAuth validates the session and returns the authenticated
// user's ID. Returns ("", false) if not authenticated.
func requireAuth(r *http.Request) (string, bool) {
	userID, _, ok := authenticatedUser(r)
	if !ok {
		return "", false
	}
	return userID.String(), true
}

type CreateDiaryRequest struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Text    string `json:"text"`
	Weather string `json:"weather,omitempty"`

	// Optional AI results produced by a prior /api/generate call
	EmotionAnalysis *models.EmotionAnalysis `json:"emotion_analysis,omitempty"`
	AIFeedback      *models.AIFeedback      `json:"ai_feedback,omitempty"`
	ComicData       *models.ComicData       `json:"comic_data,omitempty"`
}

type UpdateDiaryRequest struct {
	Text       *string `json:"text,omitempty"`
	Weather    *string `json:"weather,omitempty"`
	Bookmarked *bool   `json:"bookmarked,omitempty"`
}

type DiaryResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Diary   *models.Diary `json:"diary,omitempty"`
}

type DiaryListResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Diaries []models.Diary `json:"diaries"`
	Total   int64          `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CreateDiary creates a diary entry for the authenticated user
func CreateDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, DiaryResponse{Success: false, Message: "Authentication required"})
		return
	}

	var req CreateDiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Text is required"})
		return
	}

	date := time.Now().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	diary := models.Diary{
		ID:           primitive.NewObjectID(),
		CreatedAt:    now,
		UpdatedAt:    now,
		UserIDString: userID, // From session only; body user_id is ignored
		Date:         date,
		Text:         req.Text,
		Weather:      req.Weather,

		EmotionAnalysis: req.EmotionAnalysis,
		AIFeedback:      req.AIFeedback,
		ComicData:       req.ComicData,
	}

	if _, err := database.DB.Collection(DiaryCollection).InsertOne(ctx, diary); err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryResponse{Success: false, Message: "Failed to create diary entry"})
		return
	}

	services.Cache.InvalidateUserAggregates(userID)

	writeJSON(w, http.StatusCreated, DiaryResponse{
		Success: true,
		Message: "Diary created successfully",
		Diary:   &diary,
	})
}

// GetDiaries lists the authenticated user's diaries, newest first.
// Supports limit/skip pagination and ?bookmarked=true filtering.
func GetDiaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, DiaryListResponse{Success: false, Message: "Authentication required", Diaries: []models.Diary{}})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	skip := 0
	if s := r.URL.Query().Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	filter := bson.M{"user_id_string": userID}
	if r.URL.Query().Get("bookmarked") == "true" {
		filter["bookmarked"] = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := database.DB.Collection(DiaryCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryListResponse{Success: false, Diaries: []models.Diary{}})
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"date": -1})
	findOptions.SetLimit(int64(limit))
	findOptions.SetSkip(int64(skip))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryListResponse{Success: false, Diaries: []models.Diary{}})
		return
	}
	defer cursor.Close(ctx)

	diaries := []models.Diary{}
	if err = cursor.All(ctx, &diaries); err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryListResponse{Success: false, Diaries: []models.Diary{}})
		return
	}

	writeJSON(w, http.StatusOK, DiaryListResponse{
		Success: true,
		Diaries: diaries,
		Total:   total,
	})
}

// GetDiary returns one diary entry, owner only
func GetDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, DiaryResponse{Success: false, Message: "Authentication required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Invalid diary ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var diary models.Diary
	err = database.DB.Collection(DiaryCollection).FindOne(ctx, bson.M{
		"_id":            id,
		"user_id_string": userID,
	}).Decode(&diary)
	if err == mongo.ErrNoDocuments {
		writeJSON(w, http.StatusNotFound, DiaryResponse{Success: false, Message: "Diary not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryResponse{Success: false, Message: "Failed to load diary"})
		return
	}

	writeJSON(w, http.StatusOK, DiaryResponse{Success: true, Diary: &diary})
}

// UpdateDiary updates text, weather or bookmark state, owner only
func UpdateDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, DiaryResponse{Success: false, Message: "Authentication required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Invalid diary ID"})
		return
	}

	var req UpdateDiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Invalid request body"})
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Text != nil {
		if *req.Text == "" {
			writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Text cannot be empty"})
			return
		}
		set["text"] = *req.Text
	}
	if req.Weather != nil {
		set["weather"] = *req.Weather
	}
	if req.Bookmarked != nil {
		set["bookmarked"] = *req.Bookmarked
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var diary models.Diary
	err = database.DB.Collection(DiaryCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id_string": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&diary)
	if err == mongo.ErrNoDocuments {
		writeJSON(w, http.StatusNotFound, DiaryResponse{Success: false, Message: "Diary not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryResponse{Success: false, Message: "Failed to update diary"})
		return
	}

	services.Cache.InvalidateUserAggregates(userID)

	writeJSON(w, http.StatusOK, DiaryResponse{
		Success: true,
		Message: "Diary updated successfully",
		Diary:   &diary,
	})
}

// DeleteDiary removes a diary entry, owner only
func DeleteDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, DiaryResponse{Success: false, Message: "Authentication required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DiaryResponse{Success: false, Message: "Invalid diary ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := database.DB.Collection(DiaryCollection).DeleteOne(ctx, bson.M{
		"_id":            id,
		"user_id_string": userID,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DiaryResponse{Success: false, Message: "Failed to delete diary"})
		return
	}
	if result.DeletedCount == 0 {
		writeJSON(w, http.StatusNotFound, DiaryResponse{Success: false, Message: "Diary not found"})
		return
	}

	services.Cache.InvalidateUserAggregates(userID)

	writeJSON(w, http.StatusOK, DiaryResponse{
		Success: true,
		Message: "Diary deleted successfully",
	})
}
