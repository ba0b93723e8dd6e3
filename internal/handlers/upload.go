package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harudiary/haru-backend/internal/config"
	"github.com/harudiary/haru-backend/internal/database"
	"github.com/harudiary/haru-backend/internal/models"
	"github.com/harudiary/haru-backend/internal/services"
)

const UploadCollection = "uploads"

var cloudinaryService *services.CloudinaryService

func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

type UploadResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Upload  *models.AudioUpload `json:"upload,omitempty"`
}

type UploadListResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Uploads []models.AudioUpload `json:"uploads"`
}

// UploadFile stores an audio recording on Cloudinary and records its
// metadata for the authenticated user
func UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, UploadResponse{Success: false, Message: "Authentication required"})
		return
	}

	if cloudinaryService == nil {
		writeJSON(w, http.StatusInternalServerError, UploadResponse{Success: false, Message: "Upload service not initialized"})
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Success: false, Message: "Failed to parse form"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, UploadResponse{Success: false, Message: "No file provided"})
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "haru/audio"
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		log.Printf("⚠️ Upload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, UploadResponse{Success: false, Message: "Failed to upload file"})
		return
	}

	upload := models.AudioUpload{
		ID:           primitive.NewObjectID(),
		UserIDString: userID,
		Name:         fileHeader.Filename,
		URL:          url,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Size:         fileHeader.Size,
		Type:         fileHeader.Header.Get("Content-Type"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := database.DB.Collection(UploadCollection).InsertOne(ctx, upload); err != nil {
		// The file is already on Cloudinary; return the URL anyway
		log.Printf("⚠️ Failed to record upload metadata: %v", err)
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		Upload:  &upload,
	})
}

// GetUploads returns the user's five most recent uploads
func GetUploads(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, UploadListResponse{Success: false, Message: "Authentication required", Uploads: []models.AudioUpload{}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(UploadCollection).Find(
		ctx,
		bson.M{"user_id_string": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(5),
	)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, UploadListResponse{Success: false, Message: "Failed to load uploads", Uploads: []models.AudioUpload{}})
		return
	}
	defer cursor.Close(ctx)

	uploads := []models.AudioUpload{}
	if err = cursor.All(ctx, &uploads); err != nil {
		writeJSON(w, http.StatusInternalServerError, UploadListResponse{Success: false, Message: "Failed to load uploads", Uploads: []models.AudioUpload{}})
		return
	}

	writeJSON(w, http.StatusOK, UploadListResponse{Success: true, Uploads: uploads})
}
