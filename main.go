package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routineTrackerAPI/db"
	"routineTrackerAPI/handlers"
	"routineTrackerAPI/middleware"
	"routineTrackerAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool         *pgxpool.Pool
	jwtSecret      string
	authService    *services.AuthService
	routineService *services.RoutineService
	taskService    *services.TaskService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	saltRound, _ := strconv.Atoi(os.Getenv("SALT_ROUND"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := db.CreateSchema(ctx, dbPool); err != nil {
		log.Fatal("Failed to create schema:", err)
	}

	log.Println("Successfully connected to database")

	authService = services.NewAuthService(dbPool, jwtSecret, saltRound)
	routineService = services.NewRoutineService(dbPool)
	taskService = services.NewTaskService(dbPool)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	authHandler := handlers.NewAuthHandler(authService)
	routineHandler := handlers.NewRoutineHandler(routineService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "routine-tracker-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// AUTH ROUTES
	// -------------------------------------------------------------------------
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	authMe := auth.PathPrefix("/me").Subrouter()
	authMe.Use(middleware.JWTAuthMiddleware(jwtSecret))
	authMe.HandleFunc("", authHandler.GetMe).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED API V1 ROUTES
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware(jwtSecret))

	// Fixed paths before the {id} route so mux does not swallow them.
	protected.HandleFunc("/routines/today-summary", routineHandler.GetTodaySummary).Methods("GET")
	protected.HandleFunc("/routines/overall-summary", routineHandler.GetOverallSummary).Methods("GET")
	protected.HandleFunc("/routines", routineHandler.GetAllRoutines).Methods("GET")
	protected.HandleFunc("/routines", routineHandler.CreateRoutine).Methods("POST")
	protected.HandleFunc("/routines/{id}", routineHandler.GetRoutine).Methods("GET")
	protected.HandleFunc("/routines/{id}", routineHandler.UpdateRoutine).Methods("PATCH")
	protected.HandleFunc("/routines/{id}", routineHandler.DeleteRoutine).Methods("DELETE")

	protected.HandleFunc("/tasks/{taskId}/toggle-log", taskHandler.ToggleTaskLog).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "X-Request-ID"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
