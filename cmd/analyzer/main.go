package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bryanwahyu/automaton-poc/internal/application"
	appanalysis "github.com/bryanwahyu/automaton-poc/internal/application/analysis"
	"github.com/bryanwahyu/automaton-poc/internal/config"
	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-poc/internal/domain/stagefailures"
	aiclient "github.com/bryanwahyu/automaton-poc/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/automaton-poc/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/automaton-poc/internal/infra/db/postgres"
	"github.com/bryanwahyu/automaton-poc/internal/infra/httpserver"
	"github.com/bryanwahyu/automaton-poc/internal/infra/render"
	minioStore "github.com/bryanwahyu/automaton-poc/internal/infra/storage"
)

func main() {
	var (
		concept = flag.String("concept", "", "product concept to analyze")
		repeat  = flag.Bool("repeat", false, "also analyze audience variations of the concept")
		batch   = flag.String("batch", "", "comma-separated list of concepts to analyze")
		out     = flag.String("out", "poc_analysis_results.md", "path for the rendered report")
		serve   = flag.Bool("serve", false, "run the HTTP API instead of a one-shot analysis")
		tenant  = flag.String("tenant", "local", "tenant label for persisted runs")
	)
	flag.Parse()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("config load error: %v", err)
		}
		// no config file; CLI runs work from the environment alone
		cfg, err = config.Default()
		if err != nil {
			log.Fatalf("config error: %v", err)
		}
	}

	ctx := context.Background()

	gen := aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model)

	var db *sql.DB
	var repo domain.Repository
	var failures stagefailures.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("mysql schema error: %v", err)
		}
		repo = mysqlp.NewRunRepository(db)
		failures = mysqlp.NewStageFailureRepository(db)
	case "postgres":
		db, err = pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = pgp.NewRunRepository(db)
	}

	var artifacts domain.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	svc := &appanalysis.Service{
		Generator:         gen,
		Repo:              repo,
		Failures:          failures,
		Renderer:          render.NewMarkdown(),
		Artifacts:         artifacts,
		Clock:             application.SystemClock{},
		MaxTokensPerStage: cfg.AI.MaxTokensPerStage,
		Concurrency:       cfg.AI.ConcurrencyLimit,
	}

	if *serve {
		runServer(cfg, svc, failures, db)
		return
	}

	cmd := appanalysis.AnalyzeCommand{
		TenantID:   *tenant,
		ReportPath: *out,
	}
	switch {
	case *batch != "":
		for _, c := range strings.Split(*batch, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cmd.Concepts = append(cmd.Concepts, c)
			}
		}
		cmd.Mode = domain.ModeBatch
	case *concept != "":
		cmd.Concepts = []string{*concept}
		cmd.Mode = domain.ModeSingle
		if *repeat {
			cmd.Mode = domain.ModeRepeat
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	log.Printf("analyzing %d concept(s), mode=%s model=%s", len(cmd.Concepts), cmd.Mode, cfg.AI.Model)
	res, err := svc.Analyze(ctx, cmd)
	if err != nil {
		log.Fatalf("analyze error: %v", err)
	}

	for _, b := range res.Bundles {
		fmt.Printf("✓ %-16s %s (score %d/10, %d weeks)\n",
			b.Status, b.Concept.Label(), b.Feasibility.Score.Value, b.Feasibility.TimelineWeeks.Value)
	}
	fmt.Println("\nAnalysis complete:")
	fmt.Printf("- Concepts analyzed: %d\n", len(res.Bundles))
	fmt.Printf("- Failed: %d\n", res.Failed)
	fmt.Printf("- Total tokens used: %d\n", res.TotalTokens)
	if res.ReportPath != "" {
		fmt.Printf("- Report saved: %s\n", res.ReportPath)
	}
	if res.ReportURL != "" {
		fmt.Printf("- Report uploaded: %s\n", res.ReportURL)
	}
}

func runServer(cfg *config.Config, svc *appanalysis.Service, failures stagefailures.Repository, db *sql.DB) {
	handler := httpserver.NewRouter(svc, failures, httpserver.Options{
		APIKeys:  cfg.Server.APIKeys,
		HealthDB: db,
	})

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown; in-flight analysis batches run on their own
	// context and are allowed to finish
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
