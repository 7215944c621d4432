package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mgirard/rentadesk/internal/deals"
	"github.com/mgirard/rentadesk/internal/dealstore"
	"github.com/mgirard/rentadesk/internal/httpapi"
	"github.com/mgirard/rentadesk/internal/rentab"
	"github.com/mgirard/rentadesk/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	addrFlag := flag.String("addr", "", "listen address (overrides PORT env var)")
	backendFlag := flag.String("backend", "", "store backend: memory, file, sqlite, redis (overrides STORE_BACKEND)")
	dbFlag := flag.String("db", "", "path to SQLite database file (overrides DB_PATH)")
	stateFlag := flag.String("state-file", "", "path to JSON state file for the file backend (overrides STATE_FILE)")
	redisFlag := flag.String("redis-addr", "", "redis host:port for the redis backend (overrides REDIS_ADDR)")
	configFlag := flag.String("config", "", "path to engine config YAML (overrides ENGINE_CONFIG)")
	otlpFlag := flag.String("otlp-endpoint", "", "OTLP/HTTP collector host:port, empty disables tracing (overrides OTLP_ENDPOINT)")
	flag.Parse()

	addr := firstOf(*addrFlag, prefixPort(os.Getenv("PORT")), ":8080")

	engine := rentab.DefaultConfig()
	if path := firstOf(*configFlag, os.Getenv("ENGINE_CONFIG")); path != "" {
		loaded, err := rentab.LoadConfig(path)
		if err != nil {
			log.Fatalf("load engine config (%s): %v", path, err)
		}
		engine = loaded
		log.Printf("using engine config from %s", path)
	}

	store, backend := openStore(*backendFlag, *dbFlag, *stateFlag, *redisFlag)
	defer store.Close()
	log.Printf("using %s store", backend)

	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.Config{
		ServiceName:    "rentadesk-server",
		ServiceVersion: "1.0.0",
		Endpoint:       firstOf(*otlpFlag, os.Getenv("OTLP_ENDPOINT")),
		Insecure:       os.Getenv("OTLP_INSECURE") == "true",
	})
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}

	registry := deals.NewRegistry(deals.Config{})
	h := httpapi.NewServer(registry, store, engine)
	server := &http.Server{Addr: addr, Handler: h}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("rentadesk-server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}

func openStore(backendFlag, dbFlag, stateFlag, redisFlag string) (dealstore.Store, string) {
	cfg := dealstore.Config{}

	backend := firstOf(backendFlag, os.Getenv("STORE_BACKEND"), "file")
	switch backend {
	case "memory":
		return dealstore.NewMemoryStore(cfg), "memory"
	case "sqlite":
		dbPath := firstOf(dbFlag, os.Getenv("DB_PATH"), "./data/rentadesk.db")
		s, err := dealstore.NewSQLiteStore(dbPath, cfg)
		if err != nil {
			log.Fatalf("initialize sqlite store (%s): %v", dbPath, err)
		}
		return s, "sqlite (" + dbPath + ")"
	case "redis":
		addr := firstOf(redisFlag, os.Getenv("REDIS_ADDR"), "localhost:6379")
		s, err := dealstore.NewRedisStore(addr, cfg)
		if err != nil {
			log.Fatalf("initialize redis store (%s): %v", addr, err)
		}
		return s, "redis (" + addr + ")"
	case "file":
		statePath := firstOf(stateFlag, os.Getenv("STATE_FILE"), "./data/snapshots.json")
		s, err := dealstore.NewFileStore(statePath, cfg)
		if err != nil {
			log.Fatalf("initialize file store (%s): %v", statePath, err)
		}
		return s, "file (" + statePath + ")"
	default:
		log.Fatalf("unknown store backend %q", backend)
		return nil, ""
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func prefixPort(port string) string {
	if port == "" {
		return ""
	}
	return ":" + port
}
