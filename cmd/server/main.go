package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/FlowingHeartEggTart/Monster/internal/api"
	dbstore "github.com/FlowingHeartEggTart/Monster/internal/db"
	"github.com/FlowingHeartEggTart/Monster/internal/middleware"
	"github.com/FlowingHeartEggTart/Monster/internal/services"
	"github.com/FlowingHeartEggTart/Monster/internal/utils"
)

func main() {
	addr := utils.SafeEnv("MONSTER_ADDR", ":8080")
	commit := os.Getenv("MONSTER_COMMIT")
	buildTime := os.Getenv("MONSTER_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	router, err := api.NewRouter(store, buildDialogueProvider(), nil)
	if err != nil {
		log.Fatalf("init services: %v", err)
	}

	mux := http.NewServeMux()
	router.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       utils.T(locale, "app.name"),
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Serve the bundled frontend when MONSTER_STATIC_DIR is set.
	if staticDir := os.Getenv("MONSTER_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.LocaleMiddleware(mux))

	log.Printf("monster companion server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore picks sqlite when MONSTER_SQLITE_PATH is set, otherwise the
// volatile in-process store.
func openStore() (api.Store, error) {
	sqlitePath := os.Getenv("MONSTER_SQLITE_PATH")
	if sqlitePath == "" {
		log.Printf("MONSTER_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.ToSlash(sqlitePath) + "?cache=shared&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := dbstore.RunMigrations(conn, os.Getenv("MONSTER_MIGRATIONS_DIR")); err != nil {
		return nil, err
	}
	return dbstore.NewStore(conn)
}

// buildDialogueProvider wires the remote dialogue backend behind the local
// canned scripts when MONSTER_DIALOGUE_URL is configured. Without it the
// companion runs fully offline.
func buildDialogueProvider() services.DialogueProvider {
	baseURL := os.Getenv("MONSTER_DIALOGUE_URL")
	if baseURL == "" {
		return nil
	}
	secret := os.Getenv("MONSTER_DIALOGUE_SECRET")
	if secret == "" {
		log.Printf("MONSTER_DIALOGUE_URL set without MONSTER_DIALOGUE_SECRET, staying offline")
		return nil
	}
	deviceID := utils.SafeEnv("MONSTER_DEVICE_ID", uuid.NewString())
	timeout := utils.EnvDuration("MONSTER_DIALOGUE_TIMEOUT", 3*time.Second)
	remote := services.NewRemoteProvider(baseURL, deviceID, []byte(secret), timeout)
	return services.WithFallback(remote, services.NewScriptProvider(nil))
}
