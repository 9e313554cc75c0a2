package utils

import (
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(
	`<!doctype html><html><body><h2>{{.Title}}</h2><p>{{.Message}}</p></body></html>`))

// WriteHTML renders a minimal HTML page with an escaped title and message.
//
// It sets the "Content-Type" header to "text/html; charset=utf-8" and writes
// the provided HTTP status code before sending the response body.
//
// Example usage:
//
//	WriteHTML(w, http.StatusOK, "Authorisation successful", "You can close this tab.")
func WriteHTML(w http.ResponseWriter, statusCode int, title, message string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	return pageTemplate.Execute(w, struct{ Title, Message string }{title, message})
}
