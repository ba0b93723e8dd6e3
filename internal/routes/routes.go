package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/harudiary/haru-backend/internal/handlers"
	"github.com/harudiary/haru-backend/internal/middleware"
	"github.com/harudiary/haru-backend/internal/services"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/signout", handlers.Signout)

	// Screen lock routes. These stay reachable while the app is locked;
	// everything below the gate does not.
	r.Get("/api/lock/status", handlers.GetLockStatus)
	r.Post("/api/lock/unlock", handlers.Unlock)
	r.Post("/api/lock/lock", handlers.Lock)
	r.Post("/api/lock/setup/start", handlers.StartSetup)
	r.Post("/api/lock/change/start", handlers.StartChange)
	r.Post("/api/lock/cancel", handlers.CancelFlow)
	r.Post("/api/lock/pin", handlers.SubmitPin)
	r.Post("/api/lock/error/clear", handlers.ClearFlowError)
	r.Post("/api/lock/disable", handlers.DisableLock)

	// Everything else is protected content: locked sessions get 423
	r.Group(func(r chi.Router) {
		r.Use(middleware.LockGate(handlers.LockRegistry(), func(token string) (string, bool) {
			userID, ok, err := services.ValidateSession(token)
			if err != nil || !ok {
				return "", false
			}
			return userID.String(), true
		}))

		// Diary routes
		r.Post("/api/diaries", handlers.CreateDiary)
		r.Get("/api/diaries", handlers.GetDiaries)
		r.Get("/api/diaries/{id}", handlers.GetDiary)
		r.Put("/api/diaries/{id}", handlers.UpdateDiary)
		r.Delete("/api/diaries/{id}", handlers.DeleteDiary)

		// Calendar and statistics
		r.Get("/api/calendar", handlers.GetCalendar)
		r.Get("/api/statistics", handlers.GetStatistics)

		// AI pipeline
		r.Post("/api/speech-to-text", handlers.SpeechToText)
		r.Post("/api/generate", handlers.Generate)

		// File upload routes
		r.Post("/api/upload", handlers.UploadFile)
		r.Get("/api/uploads", handlers.GetUploads)

		// WebSocket endpoint streaming per-step generation progress
		r.Get("/ws/generate", handlers.GenerateWebSocket)
	})
}
