package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/skip2/go-qrcode"

	"github.com/quizrace/quizrace/internal/middleware"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/services/session"
	"github.com/quizrace/quizrace/internal/ws"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController *session.Controller
	HubManager        *ws.HubManager
	// PublicURL is the externally visible base URL encoded into join QR codes
	PublicURL string
}

// NewRouter creates the HTTP router: health check, websocket endpoint and
// session join QR codes
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	wsHandler := ws.NewHandler(cfg.SessionController, cfg.HubManager, cfg.Logger)
	qrHandler := &qrHandler{
		controller: cfg.SessionController,
		publicURL:  cfg.PublicURL,
		logger:     cfg.Logger,
	}

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{code}/qr", qrHandler.ServeQR).Methods(http.MethodGet)

	return cors.AllowAll().Handler(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// qrHandler serves PNG QR codes pointing at a session's join link
type qrHandler struct {
	controller *session.Controller
	publicURL  string
	logger     *slog.Logger
}

// ServeQR handles GET /sessions/{code}/qr
func (h *qrHandler) ServeQR(w http.ResponseWriter, r *http.Request) {
	code := model.SessionCode(mux.Vars(r)["code"])

	if _, err := h.controller.GetSession(r.Context(), code); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxQRSize {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = parsed
	}

	joinURL := fmt.Sprintf("%s/?code=%s", h.publicURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, size)
	if err != nil {
		h.logger.Error("qr encode failed", slog.String("error", err.Error()))
		http.Error(w, "could not generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
