package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/transemirates/chatbridge/internal/ai"
	"github.com/transemirates/chatbridge/internal/chatbot"
	"github.com/transemirates/chatbridge/internal/content"
	"github.com/transemirates/chatbridge/internal/inquiry"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	includeKB := strings.EqualFold(os.Getenv("RAG_INCLUDE_KB"), "true")

	// --- DB ---
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// --- Chatbot module wiring ---
	contentStore := content.NewStore(db)
	aiClient := ai.NewOpenAIClient(log)
	chatbotRepo := chatbot.NewRepo(db)
	chatbotService := chatbot.NewService(chatbotRepo, aiClient, contentStore, includeKB, log)
	chatbotHandler := chatbot.NewHandler(chatbotService, log)

	chatbot.RegisterRoutes(r, chatbotHandler)

	// --- Inquiries module wiring ---
	inquiryRepo := inquiry.NewRepo(db)
	inquiryHandler := inquiry.NewHandler(inquiryRepo, log)

	inquiry.RegisterRoutes(r, inquiryHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	log.Infof("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
