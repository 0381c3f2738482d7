package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"drawbot/application"
	"drawbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DebugController is the controller surface exposed on the debug API
type DebugController interface {
	ListActive(ctx context.Context) ([]*entities.Lottery, error)
	GetHistory(ctx context.Context) ([]*entities.DrawResult, error)
	TriggerNow(ctx context.Context, lotteryID string) (*entities.DrawResult, error)
	PendingTimers(lotteryID string) int
	Phase(lotteryID string) application.Phase
}

// DebugCommand represents a debug command sent via HTTP
type DebugCommand struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params"`
}

// DebugResponse represents the response from a debug command
type DebugResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LotteryStatus describes one active lottery on the debug API
type LotteryStatus struct {
	Lottery       *entities.Lottery `json:"lottery"`
	PendingTimers int               `json:"pending_timers"`
	Phase         application.Phase `json:"phase"`
}

// StartDebugAPI starts an internal HTTP API for debug commands
func (b *Bot) StartDebugAPI(port int, controller DebugController) error {
	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      NewDebugHandler(controller),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("Debug API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Debug API server error: %v", err)
		}
	}()

	b.debugServer = server
	return nil
}

// NewDebugHandler builds the debug API routes
func NewDebugHandler(controller DebugController) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/debug/lotteries", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		lotteries, err := controller.ListActive(r.Context())
		if err != nil {
			respondWithError(w, fmt.Sprintf("Failed to list lotteries: %v", err), http.StatusInternalServerError)
			return
		}

		statuses := make([]LotteryStatus, 0, len(lotteries))
		for _, l := range lotteries {
			statuses = append(statuses, LotteryStatus{
				Lottery:       l,
				PendingTimers: controller.PendingTimers(l.ID),
				Phase:         controller.Phase(l.ID),
			})
		}
		respondWithData(w, statuses)
	})

	mux.HandleFunc("/debug/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		results, err := controller.GetHistory(r.Context())
		if err != nil {
			respondWithError(w, fmt.Sprintf("Failed to load history: %v", err), http.StatusInternalServerError)
			return
		}
		respondWithData(w, results)
	})

	mux.HandleFunc("/debug/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var cmd DebugCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			respondWithError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		switch cmd.Action {
		case "draw_now":
			lotteryID := cmd.Params["lottery_id"]
			if lotteryID == "" {
				respondWithError(w, "Missing lottery_id", http.StatusBadRequest)
				return
			}

			result, err := controller.TriggerNow(r.Context(), lotteryID)
			if err != nil {
				respondWithError(w, fmt.Sprintf("Failed to draw: %v", err), http.StatusInternalServerError)
				return
			}

			log.WithFields(log.Fields{
				"lottery_id": lotteryID,
				"result_id":  result.ID,
				"source":     "debug_api",
			}).Info("Triggered draw")
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(DebugResponse{
				Success: true,
				Message: "Draw executed",
				Data:    result,
			})

		default:
			respondWithError(w, fmt.Sprintf("Unknown action: %s", cmd.Action), http.StatusBadRequest)
		}
	})

	return mux
}

func respondWithData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DebugResponse{
		Success: true,
		Data:    data,
	})
}

func respondWithError(w http.ResponseWriter, error string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DebugResponse{
		Success: false,
		Error:   error,
	})
}
