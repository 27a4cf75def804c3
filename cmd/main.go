package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"tastetrail/internal/api"
	"tastetrail/internal/config"
	"tastetrail/internal/discovery"
	"tastetrail/internal/geo"
	"tastetrail/internal/monitoring"
	"tastetrail/internal/scout"
	"tastetrail/internal/speech"
	"tastetrail/internal/store"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	demoOnly    = flag.Bool("demo-only", false, "Serve canned demo results without a live discovery model")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *metricsPort != 0 {
		cfg.MetricsPort = *metricsPort
	}

	// Initialize database
	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize the discovery capability
	var finder discovery.Finder
	var chatModel llms.LLM
	if *demoOnly {
		finder = discovery.NewMockFinder()
	} else {
		model, err := initializeLLM(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize discovery model: %v", err)
		}
		chatModel = model
		finder = discovery.NewLLMFinder(model, discovery.WithModelName(cfg.LLM.Model))
	}

	// Best-effort collaborators
	var speaker speech.Speaker = speech.Noop{}
	if cfg.Speech.Endpoint != "" {
		speaker = speech.NewHTTPSpeaker(cfg.Speech.Endpoint, cfg.Speech.Voice)
	}
	var geocoder geo.Geocoder
	if cfg.Geocoder.Endpoint != "" {
		geocoder = geo.NewHTTPGeocoder(cfg.Geocoder.Endpoint)
	}

	monitor := monitoring.NewMonitor()
	orch := scout.New(finder, discovery.NewMockFinder(), speaker, monitor, cfg.DemoDelay())

	srv := api.NewServer(cfg, db, orch, geocoder, speaker, chatModel, monitor)
	defer srv.Close()

	// Start metrics server
	go startMetricsServer(cfg.MetricsPort)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func initializeLLM(cfg *config.Config) (llms.LLM, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.LLM.Model),
		openai.WithToken(cfg.LLM.APIKey),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return llm, nil
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
