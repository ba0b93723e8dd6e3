package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/harudiary/haru-backend/internal/lock"
)

var lockRegistry *lock.Registry

// InitLockService wires the screen-lock endpoints to their persistence
// layer. Must be called before the router is built.
func InitLockService(repo lock.ConfigRepository) {
	lockRegistry = lock.NewRegistry(repo)
	log.Println("✅ Lock service initialized")
}

// LockRegistry exposes the session registry to middleware
func LockRegistry() *lock.Registry {
	return lockRegistry
}

type LockStatusResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Status  lock.State `json:"status"`
}

type PinRequest struct {
	Pin string `json:"pin"`
}

type UnlockResponse struct {
	Success  bool   `json:"success"`
	Unlocked bool   `json:"unlocked"`
	Message  string `json:"message,omitempty"`
}

// FlowResponse reports the setup/change flow position after an action.
type FlowResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Session lock.Session  `json:"session"`
	Info    lock.StepInfo `json:"info"`
}

// sessionLockState resolves the request to its per-session lock state,
// re-attaching after a restart so the registry entry always exists.
func sessionLockState(r *http.Request) (string, bool) {
	userID, token, ok := authenticatedUser(r)
	if !ok {
		return "", false
	}
	lockRegistry.Attach(r.Context(), token, userID.String())
	return token, true
}

func flowJSON(w http.ResponseWriter, sess lock.Session) {
	writeJSON(w, http.StatusOK, FlowResponse{
		Success: true,
		Session: sess,
		Info:    sess.Step.Info(),
	})
}

// GetLockStatus returns the lock state for the current session
func GetLockStatus(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, LockStatusResponse{Success: false, Message: "Authentication required"})
		return
	}

	store, _ := lockRegistry.Store(token)
	writeJSON(w, http.StatusOK, LockStatusResponse{
		Success: true,
		Status:  store.State(),
	})
}

// Unlock verifies a PIN against the lock screen and unlocks on match
func Unlock(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, UnlockResponse{Success: false, Message: "Authentication required"})
		return
	}

	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, UnlockResponse{Success: false, Message: "Invalid request body"})
		return
	}

	screen, _ := lockRegistry.Screen(token)
	if screen.Submit(r.Context(), req.Pin) {
		writeJSON(w, http.StatusOK, UnlockResponse{Success: true, Unlocked: true})
		return
	}

	writeJSON(w, http.StatusOK, UnlockResponse{
		Success:  true,
		Unlocked: false,
		Message:  screen.Error(),
	})
}

// Lock re-locks the app for the current session
func Lock(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, LockStatusResponse{Success: false, Message: "Authentication required"})
		return
	}

	store, _ := lockRegistry.Store(token)
	store.LockApp()
	writeJSON(w, http.StatusOK, LockStatusResponse{Success: true, Status: store.State()})
}

// StartSetup begins establishing a new PIN
func StartSetup(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, FlowResponse{Success: false, Message: "Authentication required"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	machine.StartSetup()
	flowJSON(w, machine.Session())
}

// StartChange begins changing the existing PIN
func StartChange(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, FlowResponse{Success: false, Message: "Authentication required"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	machine.StartChange()
	if machine.Session().Step == lock.StepNone {
		writeJSON(w, http.StatusConflict, FlowResponse{
			Success: false,
			Message: "Lock is not enabled",
			Session: machine.Session(),
			Info:    lock.StepNone.Info(),
		})
		return
	}
	flowJSON(w, machine.Session())
}

// CancelFlow abandons the setup/change flow
func CancelFlow(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, FlowResponse{Success: false, Message: "Authentication required"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	machine.Cancel()
	flowJSON(w, machine.Session())
}

// ClearFlowError drops the flow's validation message. Clients call
// this when the pad receives new input so a stale message never
// outlives the entry it belongs to.
func ClearFlowError(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, FlowResponse{Success: false, Message: "Authentication required"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	machine.ClearError()
	flowJSON(w, machine.Session())
}

// SubmitPin feeds one completed 4-digit entry to the flow
func SubmitPin(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, FlowResponse{Success: false, Message: "Authentication required"})
		return
	}

	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, FlowResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if !lock.ValidPin(req.Pin) {
		writeJSON(w, http.StatusBadRequest, FlowResponse{Success: false, Message: "PIN must be 4 digits"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	flowJSON(w, machine.Submit(r.Context(), req.Pin))
}

// DisableLock turns the screen lock off
func DisableLock(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionLockState(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, LockStatusResponse{Success: false, Message: "Authentication required"})
		return
	}

	machine, _ := lockRegistry.Machine(token)
	if err := machine.Disable(r.Context()); err != nil {
		log.Printf("⚠️ Failed to disable lock: %v", err)
		writeJSON(w, http.StatusInternalServerError, LockStatusResponse{Success: false, Message: "Failed to disable lock"})
		return
	}

	store, _ := lockRegistry.Store(token)
	writeJSON(w, http.StatusOK, LockStatusResponse{Success: true, Status: store.State()})
}
