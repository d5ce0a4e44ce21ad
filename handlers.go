package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
)

func healthHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.RemainingPrizes(r.Context()); err != nil {
			log.Println("health check failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func drawHandler(engine *DrawEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req DrawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "INVALID_REQUEST"})
			return
		}

		if !isValidDeviceID(req.DeviceID) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "INVALID_DEVICE_ID"})
			return
		}

		outcome, err := engine.Draw(r.Context(), req.DeviceID, req.Rate)
		if err != nil {
			log.Println("draw failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "INTERNAL_ERROR"})
			return
		}

		json.NewEncoder(w).Encode(DrawResponse{
			Won:       outcome.Won,
			Reason:    outcome.Reason,
			Remaining: outcome.Remaining,
		})
	}
}

func statusHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolSize, err := store.PoolSize(r.Context())
		if err != nil {
			log.Println("status query failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "INTERNAL_ERROR"})
			return
		}

		remaining, err := store.RemainingPrizes(r.Context())
		if err != nil {
			log.Println("status query failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "INTERNAL_ERROR"})
			return
		}

		json.NewEncoder(w).Encode(StatusResponse{
			PoolSize:  poolSize,
			Awarded:   poolSize - remaining,
			Remaining: remaining,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigin := os.Getenv("CORS_ALLOW_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
