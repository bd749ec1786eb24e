// cmd/server/main.go
package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/pkg/browser"

	"github.com/massgo/mailer-backend/internal/config"
	"github.com/massgo/mailer-backend/internal/gemini"
	"github.com/massgo/mailer-backend/internal/handler"
	"github.com/massgo/mailer-backend/internal/logger"
	"github.com/massgo/mailer-backend/internal/mailer"
	"github.com/massgo/mailer-backend/internal/service"
	"github.com/massgo/mailer-backend/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitDefault(cfg.Logger)

	transport := &mailer.SMTP{Host: cfg.SMTPHost, Port: cfg.SMTPPort}

	campaignHandler := &handler.CampaignHandler{
		Single: &service.CampaignService{
			Transport: transport,
			Delay:     cfg.SingleSendDelay,
		},
		Rotation: &service.RotationService{
			Transport:    transport,
			Delay:        cfg.RotationSendDelay,
			AccountLimit: cfg.PerAccountLimit,
		},
	}
	aiHandler := &handler.AIHandler{Generator: gemini.NewClient()}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Post("/send_emails", campaignHandler.SendEmails)
	r.Post("/send_massgo_emails", campaignHandler.SendMassGoEmails)
	r.Post("/api/ai_generate", aiHandler.Generate)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, web.FS, "index.html")
	})

	if cfg.OpenBrowser {
		go openBrowser("http://" + cfg.ListenAddr + "/")
	}

	slog.Info("🚀 Server running", "addr", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

// openBrowser points the user's browser at the UI once the listener has had a
// moment to come up. It shares nothing with the request path.
func openBrowser(url string) {
	time.Sleep(1500 * time.Millisecond)
	if err := browser.OpenURL(url); err != nil {
		slog.Warn("could not open browser", "url", url, "error", err.Error())
		return
	}
	slog.Info("browser open request sent", "url", url)
}
