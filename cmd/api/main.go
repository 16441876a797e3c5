// cmd/api/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"techlab/internal/config"
	"techlab/internal/equipment"
	"techlab/internal/flatfile"
	"techlab/internal/loans"
	"techlab/internal/reports"
	"techlab/internal/users"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir %s: %v", cfg.DataDir, err)
	}

	equipmentTable := flatfile.NewTable(filepath.Join(cfg.DataDir, "equipos.csv"), equipment.TableFields)
	loanTable := flatfile.NewTable(filepath.Join(cfg.DataDir, "prestamos.csv"), loans.TableFields)
	userTable := flatfile.NewTable(filepath.Join(cfg.DataDir, "usuarios.csv"), users.TableFields)
	journal := loans.NewJournal(filepath.Join(cfg.DataDir, "prestamos_journal.jsonl"))

	equipmentSvc := equipment.NewService(equipmentTable)
	loanSvc := loans.NewService(loanTable, equipmentSvc, journal)
	reportSvc := reports.NewService(loanTable, cfg.DataDir)
	userSvc := users.NewService(userTable, cfg.MaxLoginAttempts)
	sessions := users.NewMemorySessionStore(cfg.SessionTTL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	users.NewHandler(userSvc, sessions).Routes(r)

	r.Group(func(r chi.Router) {
		r.Use(users.RequireAuth(sessions))
		equipment.NewHandler(equipmentSvc).Routes(r)
		loans.NewHandler(loanSvc).Routes(r)
		reports.NewHandler(reportSvc).Routes(r)
	})

	log.Printf("TechLab inventory service listening on port %s (data dir %s)", cfg.Port, cfg.DataDir)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
