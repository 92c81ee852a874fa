package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"greenguardian/db"
	"greenguardian/db/migrations"
	"greenguardian/internal/handlers"
	"greenguardian/internal/mailer"
	"greenguardian/internal/objectstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Error("POSTGRES_CONN env variable is not set")
		os.Exit(1)
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Error("cannot connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := db.NewStorage(dbConn)
	files := objectstore.NewClient(os.Getenv("STORAGE_URL"), os.Getenv("STORAGE_SERVICE_KEY"))

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	mail := mailer.NewSMTPSender(
		os.Getenv("SMTP_HOST"),
		smtpPort,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
		os.Getenv("SMTP_FROM"),
	)

	h := handlers.NewHandler(log, store, files, mail, os.Getenv("ADMIN_PASSWORD"))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// submission pipeline
		r.Post("/bid-entry/init-upload", h.InitUploadHandler)
		r.Post("/create-bid-entry", h.CreateBidEntryHandler)
		r.Post("/send-email", h.SendEmailHandler)

		// evaluator dashboard + scoresheet
		r.Get("/bids", h.GetBidEntriesHandler)
		r.Get("/evaluations", h.GetEvaluationHandler)
		r.Post("/evaluations", h.SubmitEvaluationHandler)

		// admin viewer
		r.Post("/admin/login", h.AdminLoginHandler)
		r.Route("/admin/submissions", func(r chi.Router) {
			r.Use(handlers.RequireAdmin)
			r.Get("/", h.AdminListSubmissionsHandler)
			r.Get("/{id}", h.AdminGetSubmissionHandler)
		})
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start the server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	log.Info("starting server", slog.String("addr", serverAddr))
	<-done
	log.Info("server stopped")
}
