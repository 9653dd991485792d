// Package main provides the CLI entrypoint for the answerphone detection toolkit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/huyahoo/answerphone-detection/internal/audio"
	"github.com/huyahoo/answerphone-detection/internal/batch"
	"github.com/huyahoo/answerphone-detection/internal/config"
	"github.com/huyahoo/answerphone-detection/internal/detection"
	"github.com/huyahoo/answerphone-detection/internal/metrics"
	"github.com/huyahoo/answerphone-detection/internal/reconstruct"
	"github.com/huyahoo/answerphone-detection/internal/server"
	"github.com/huyahoo/answerphone-detection/internal/store"
	"github.com/huyahoo/answerphone-detection/internal/transcription"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "amdetect"
	serviceVersion    = "1.0.0"
)

var (
	configPath string

	reconstructID     string
	reconstructOutput string
	reconstructRate   int
	reconstructChans  int
	reconstructBits   int

	transcribeReport string

	classifyKeywords string

	batchOutputDir string
	batchExportDir string
	batchWorkers   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "amdetect",
		Short:         "Telephony audio recovery and answering machine detection toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to configuration file")

	rootCmd.AddCommand(newReconstructCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func newReconstructCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconstruct <ledger-file> <payload-file>",
		Short: "Rebuild a playable WAV container from a timing ledger and raw payload",
		Args:  cobra.ExactArgs(2),
		RunE:  runReconstructCmd,
	}
	cmd.Flags().StringVar(&reconstructID, "id", "", "item identifier (default: payload file base name)")
	cmd.Flags().StringVar(&reconstructOutput, "output", "", "output WAV path (default: <id>.wav)")
	cmd.Flags().IntVar(&reconstructRate, "sample-rate", audio.DefaultFormat.SampleRate, "sample rate in Hz")
	cmd.Flags().IntVar(&reconstructChans, "channels", audio.DefaultFormat.Channels, "channel count")
	cmd.Flags().IntVar(&reconstructBits, "bits", audio.DefaultFormat.BitsPerSample, "bits per sample")
	return cmd
}

func runReconstructCmd(_ *cobra.Command, args []string) error {
	ledgerPath, payloadPath := args[0], args[1]

	id := reconstructID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(payloadPath), filepath.Ext(payloadPath))
	}
	outputPath := reconstructOutput
	if outputPath == "" {
		outputPath = id + ".wav"
	}

	format := audio.Format{
		SampleRate:    reconstructRate,
		Channels:      reconstructChans,
		BitsPerSample: reconstructBits,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reconstructor := reconstruct.NewReconstructor(logger)

	result, err := reconstructor.ReconstructFromFiles(id, ledgerPath, payloadPath, format, outputPath)
	if err != nil {
		return fmt.Errorf("reconstruction failed: %w", err)
	}

	fmt.Printf("Wrote %s (%d bytes, %.2fs of audio)\n",
		result.OutputPath, result.ContainerInfo.TotalSize, result.ContainerInfo.Duration)
	return nil
}

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wav-file>",
		Short: "Transcribe a WAV container through the configured gateway",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscribeCmd,
	}
	cmd.Flags().StringVar(&transcribeReport, "report", "", "write a text report to this path instead of stdout")
	return cmd
}

func runTranscribeCmd(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := initLogger(cfg.Logging)

	gateway, _, closeGateway, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	defer closeGateway()

	container, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}
	if err := audio.ValidateContainer(container); err != nil {
		return fmt.Errorf("invalid WAV container: %w", err)
	}

	startTime := time.Now()
	alternatives, err := gateway.Recognize(context.Background(), container, recognitionConfig(cfg))
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	result := &transcription.Result{Alternatives: alternatives}
	meta := transcription.ReportMeta{
		SourcePath:     args[0],
		ProcessingTime: time.Since(startTime),
		Success:        true,
	}

	if transcribeReport != "" {
		if err := transcription.WriteReport(transcribeReport, result, meta); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", slog.String("path", transcribeReport))
		return nil
	}

	fmt.Print(transcription.FormatReport(result, meta))
	return nil
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <transcript-file>",
		Short: "Classify a transcript as answering machine or human",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassifyCmd,
	}
	cmd.Flags().StringVar(&classifyKeywords, "keywords", "", "YAML file with detection keywords (default: built-in set)")
	return cmd
}

func runClassifyCmd(_ *cobra.Command, args []string) error {
	classifier, err := buildClassifier(classifyKeywords)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	if classifier.Classify(string(data)) {
		fmt.Println("MACHINE")
	} else {
		fmt.Println("HUMAN")
	}
	return nil
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <folder>",
		Short: "Process every payload/ledger pair in a folder and export results",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatchCmd,
	}
	cmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "directory for WAV containers and reports (default: from config)")
	cmd.Flags().StringVar(&batchExportDir, "export-dir", "", "directory for CSV and JSON exports (default: from config)")
	cmd.Flags().IntVar(&batchWorkers, "workers", 0, "worker pool size (default: from config)")
	return cmd
}

func runBatchCmd(_ *cobra.Command, args []string) error {
	folder := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := initLogger(cfg.Logging)

	outputDir := cfg.Batch.OutputDir
	if batchOutputDir != "" {
		outputDir = batchOutputDir
	}
	exportDir := cfg.Batch.ExportDir
	if batchExportDir != "" {
		exportDir = batchExportDir
	}
	if exportDir == "" {
		exportDir = outputDir
	}
	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	gateway, _, closeGateway, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	defer closeGateway()

	classifier, err := buildClassifier(cfg.Detection.KeywordsFile)
	if err != nil {
		return err
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	orchestrator, err := batch.NewOrchestrator(logger, gateway, classifier, appMetrics, batch.Config{
		Format: audio.Format{
			SampleRate:    cfg.Audio.SampleRate,
			Channels:      cfg.Audio.Channels,
			BitsPerSample: cfg.Audio.BitsPerSample,
		},
		Recognition:      recognitionConfig(cfg),
		Workers:          workers,
		WriteTextReports: cfg.Batch.WriteReports,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	startedAt := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := orchestrator.RunBatch(ctx, folder, outputDir)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	csvPath, err := batch.ExportCSV(summary, exportDir)
	if err != nil {
		return fmt.Errorf("failed to export CSV: %w", err)
	}
	jsonPath, err := batch.ExportJSON(summary, exportDir)
	if err != nil {
		return fmt.Errorf("failed to export JSON: %w", err)
	}

	if cfg.Batch.HistoryDB != "" {
		history, err := store.Open(cfg.Batch.HistoryDB)
		if err != nil {
			logger.Warn("Failed to open history database", slog.String("error", err.Error()))
		} else {
			defer history.Close()
			if _, err := history.SaveSummary(summary, startedAt); err != nil {
				logger.Warn("Failed to save batch history", slog.String("error", err.Error()))
			}
		}
	}

	logger.Info("Exports written",
		slog.String("csv", csvPath),
		slog.String("json", jsonPath),
	)

	fmt.Printf("Processed %d items: %d succeeded, %d failed, %d answering machines detected\n",
		len(summary.Items), summary.SuccessCount, summary.FailureCount, summary.DetectionCount)
	fmt.Printf("Exports: %s, %s\n", csvPath, jsonPath)
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitoring HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", configPath),
	)

	if !cfg.HTTP.Enabled {
		return fmt.Errorf("http server is disabled in configuration")
	}

	_, gatewayStats, closeGateway, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	defer closeGateway()

	var history *store.Store
	if cfg.Batch.HistoryDB != "" {
		history, err = store.Open(cfg.Batch.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer history.Close()
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, gatewayStats, history, appMetrics)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	logger.Info("Service stopped")
	return nil
}

// buildGateway constructs the recognition gateway selected by configuration.
// The returned stats function is nil-safe for providers without statistics.
func buildGateway(cfg *config.Config) (transcription.Gateway, server.GatewayStatsFunc, func(), error) {
	switch cfg.Transcription.Provider {
	case "whisper":
		gateway, err := transcription.NewWhisperGateway(
			cfg.Transcription.APIKey,
			cfg.Transcription.Endpoint,
			cfg.Transcription.Model,
		)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create whisper gateway: %w", err)
		}
		return gateway, func() any { return nil }, func() {}, nil
	default:
		client, err := transcription.NewClient(transcription.ClientConfig{
			Endpoint:      cfg.Transcription.Endpoint,
			APIKey:        cfg.Transcription.APIKey,
			Timeout:       cfg.Transcription.GetTimeoutDuration(),
			MaxRetries:    cfg.Transcription.MaxRetries,
			MaxConcurrent: cfg.Transcription.MaxConcurrent,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create transcription client: %w", err)
		}
		stats := func() any { return client.GetStats() }
		closer := func() { _ = client.Close() }
		return client, stats, closer, nil
	}
}

// recognitionConfig derives the per-request recognition settings from the
// audio and transcription sections of the configuration.
func recognitionConfig(cfg *config.Config) transcription.RecognitionConfig {
	return transcription.RecognitionConfig{
		Encoding:             "LINEAR16",
		SampleRate:           cfg.Audio.SampleRate,
		ChannelCount:         cfg.Audio.Channels,
		PrimaryLanguage:      cfg.Transcription.PrimaryLanguage,
		FallbackLanguages:    cfg.Transcription.FallbackLanguages,
		AutomaticPunctuation: cfg.Transcription.AutomaticPunctuation,
	}
}

func buildClassifier(keywordsFile string) (*detection.Classifier, error) {
	if keywordsFile == "" {
		return detection.NewClassifier(), nil
	}
	classifier, err := detection.NewClassifierFromFile(keywordsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load keywords: %w", err)
	}
	return classifier, nil
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
