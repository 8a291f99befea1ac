package diag

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
)

// AttachAdminRoutes mounts debugging routes for the diagnostics database:
// a tailSQL live-query UI under /debug/tailsql/ and an on-demand backup
// download under /debug/backup.
func (s *Store) AttachAdminRoutes(mux *http.ServeMux) {
	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://diagnostics.db", s.DB, &tailsql.DBOptions{
		Label: "Diffusion diagnostics DB",
	})

	// mount the tailSQL server on the debug /tailsql path
	mux.Handle("/debug/tailsql/", tsql.NewMux())

	mux.HandleFunc("/debug/backup", func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := s.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		defer os.Remove(backupPath)

		f, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup: %v", err), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := io.Copy(w, f); err != nil {
			log.Printf("failed to stream backup: %v", err)
		}
	})
}
