package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/harudiary/haru-backend/internal/config"
	"github.com/harudiary/haru-backend/internal/services"
)

var (
	aiService         *services.AIService
	generationService *services.GenerationService
)

// InitAIService wires the AI pipeline handlers to their HTTP clients.
// Must be called before the router is built.
func InitAIService(cfg *config.Config) {
	aiService = services.NewAIService(cfg)
	generationService = services.NewGenerationService(aiService)
	log.Println("✅ AI service initialized")
}

type SpeechToTextResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
}

// SpeechToText transcribes an uploaded audio recording via the STT
// service and returns the raw text
func SpeechToText(w http.ResponseWriter, r *http.Request) {
	_, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, SpeechToTextResponse{Success: false, Message: "Authentication required"})
		return
	}

	// Limit audio uploads to 10MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, SpeechToTextResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, SpeechToTextResponse{Success: false, Message: "Audio file is required"})
		return
	}
	defer file.Close()

	text, err := aiService.SpeechToText(r.Context(), file, header.Filename)
	if err != nil {
		log.Printf("⚠️ Speech-to-text failed: %v", err)
		writeJSON(w, http.StatusBadGateway, SpeechToTextResponse{Success: false, Message: "Transcription failed"})
		return
	}

	writeJSON(w, http.StatusOK, SpeechToTextResponse{Success: true, Text: text})
}

type GenerateRequest struct {
	RawText  string `json:"raw_text"`
	UserName string `json:"user_name,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

type GenerateResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Result  *services.GenerationResult `json:"result,omitempty"`
}

// Generate runs the full diary AI pipeline synchronously. Clients that
// want step-by-step progress use the WebSocket variant instead.
func Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, GenerateResponse{Success: false, Message: "Authentication required"})
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.RawText == "" {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Message: "raw_text is required"})
		return
	}

	result := generationService.Generate(r.Context(), userID, req.UserName, req.Gender, req.RawText, nil)

	writeJSON(w, http.StatusOK, GenerateResponse{Success: true, Result: result})
}
