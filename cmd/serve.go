package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/agent"
	"github.com/sells-group/lineguard/internal/incident"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inspection server with streaming step output",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		ai := anthropic.NewClient(cfg.Anthropic.Key)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/inspect", handleInspect(ai, store))
		r.Get("/api/incidents", handleListIncidents(store))
		r.Get("/api/incidents/stats", handleIncidentStats(store))
		r.Delete("/api/incidents", handleClearIncidents(store))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// inspectRequest is the POST /api/inspect body.
type inspectRequest struct {
	ImageBase64     string `json:"image_base64"`
	BagNumber       int    `json:"bag_number"`
	ExpectedProduct string `json:"expected_product"`
}

// handleInspect runs one inspection, streaming step and decision events as
// SSE frames. The agent runs on the request goroutine: callbacks write
// frames synchronously, so event order matches execution order.
func handleInspect(ai anthropic.Client, store incident.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inspectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ImageBase64 == "" {
			http.Error(w, `{"error":"image_base64 is required"}`, http.StatusBadRequest)
			return
		}

		image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			http.Error(w, `{"error":"image_base64 is not valid base64"}`, http.StatusBadRequest)
			return
		}

		stream, err := newSSEWriter(w)
		if err != nil {
			http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
			return
		}

		a := agent.New(ai, store, cfg, streamCallbacks(stream, req.BagNumber))

		meta := model.CallerMetadata{
			BagNumber:       req.BagNumber,
			ExpectedProduct: model.ProductType(req.ExpectedProduct),
		}
		decision, err := a.Run(r.Context(), image, meta)
		if err != nil {
			zap.L().Error("inspection failed",
				zap.Int("bag_number", req.BagNumber),
				zap.Error(err),
			)
			stream.send(model.StreamMessage{
				Type:      model.StreamMessageError,
				Error:     err.Error(),
				BagNumber: req.BagNumber,
			})
			return
		}

		persistIfFailed(r.Context(), store, decision, req.BagNumber)
	}
}

// streamCallbacks maps agent progress onto stream frames.
func streamCallbacks(stream *sseWriter, bagNumber int) agent.Callbacks {
	return agent.Callbacks{
		OnStep: func(step model.Step) {
			stream.send(model.StreamMessage{
				Type:      model.StreamMessageStep,
				Step:      &step,
				BagNumber: bagNumber,
			})
		},
		OnDecision: func(decision *model.AgentDecision) {
			stream.send(model.StreamMessage{
				Type:      model.StreamMessageDecision,
				Decision:  decision,
				BagNumber: bagNumber,
			})
		},
	}
}

func handleListIncidents(store incident.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := cfg.Agent.HistoryDays
		if raw := r.URL.Query().Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, `{"error":"days must be a non-negative integer"}`, http.StatusBadRequest)
				return
			}
			days = n
		}

		incidents, err := store.Query(r.Context(), days)
		if err != nil {
			zap.L().Error("list incidents failed", zap.Error(err))
			http.Error(w, `{"error":"store query failed"}`, http.StatusInternalServerError)
			return
		}
		if incidents == nil {
			incidents = []model.Incident{}
		}
		writeJSON(w, http.StatusOK, incidents)
	}
}

func handleIncidentStats(store incident.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			zap.L().Error("incident stats failed", zap.Error(err))
			http.Error(w, `{"error":"store query failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleClearIncidents(store incident.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context()); err != nil {
			zap.L().Error("clear incidents failed", zap.Error(err))
			http.Error(w, `{"error":"store clear failed"}`, http.StatusInternalServerError)
			return
		}
		zap.L().Info("incident store cleared")
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
