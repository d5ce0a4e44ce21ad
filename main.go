package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

/* ======================
   Request / Response Types
   ====================== */

type DrawRequest struct {
	DeviceID string   `json:"deviceId"`
	Rate     *float64 `json:"rate,omitempty"`
}

type DrawResponse struct {
	Won       bool   `json:"won"`
	Reason    string `json:"reason,omitempty"`
	Remaining int    `json:"remaining"`
}

type StatusResponse struct {
	PoolSize  int `json:"poolSize"`
	Awarded   int `json:"awarded"`
	Remaining int `json:"remaining"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

/* ======================
   main()
   ====================== */

const (
	defaultPoolSize = 100
	defaultWinRate  = 0.15
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	log.Println("App environment:", env)

	poolSize := defaultPoolSize
	if v := os.Getenv("PRIZE_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatal("invalid PRIZE_POOL_SIZE: ", v)
		}
		poolSize = n
	}

	winRate := defaultWinRate
	if v := os.Getenv("DEFAULT_WIN_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatal("invalid DEFAULT_WIN_RATE: ", v)
		}
		winRate = f
	}

	devMode := os.Getenv("DEV_MODE") == "true"

	ctx := context.Background()

	var store Store
	if devMode {
		log.Println("⚠️  DEV MODE ENABLED: using in-memory store")
		mem := NewMemoryStore()
		if err := seedPrizePool(ctx, mem, poolSize); err != nil {
			log.Fatal("Failed to seed prize pool:", err)
		}
		store = mem
	} else {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL is not set")
		}

		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatal("failed to open database:", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := db.Ping(); err != nil {
			log.Fatal("failed to ping database:", err)
		}
		log.Println("Connected to PostgreSQL")

		pg := NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}

		lockConn, acquired, err := acquireStartupLock(ctx, db)
		if err != nil {
			log.Fatal("Failed to acquire startup lock:", err)
		}
		if acquired {
			startupLockConn = lockConn
			log.Println("Startup lock acquired; seeding prize pool")
			if err := seedPrizePool(ctx, pg, poolSize); err != nil {
				log.Fatal("Failed to seed prize pool:", err)
			}
		} else {
			log.Println("Startup lock held by another instance; skipping pool seeding")
		}
		store = pg
	}

	engine := NewDrawEngine(store, winRate)

	mux := http.NewServeMux()
	registerRoutes(mux, store, engine)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		log.Fatal("server failed:", err)
	}
}

func registerRoutes(mux *http.ServeMux, store Store, engine *DrawEngine) {
	mux.HandleFunc("/health", healthHandler(store))
	mux.HandleFunc("/draw", drawHandler(engine))
	mux.HandleFunc("/status", statusHandler(store))
}
