package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Preflight answers CORS OPTIONS requests; the CORS middleware has already set the headers.
func (a *App) Preflight(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "Not Found")
}
