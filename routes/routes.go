// Package routes defines the route groups mounted under the API version prefix.
//
// Each group is an ordinary http.Handler supplied by a collaborator. The server
// strips the group prefix before delegating, so a group sees "/" for "V/college".
package routes

import (
	"encoding/json"
	"net/http"
)

// Group names in mount order.
const (
	College    = "college"
	Student    = "student"
	Login      = "login"
	Categories = "categories"
	States     = "states"
	Services   = "services"
	City       = "city"
)

// Names lists every route group in the order the server mounts them
var Names = []string{College, Student, Login, Categories, States, Services, City}

// Set binds each route group name to its handler.
// A nil field falls back to NotImplemented.
type Set struct {
	College    http.Handler
	Student    http.Handler
	Login      http.Handler
	Categories http.Handler
	States     http.Handler
	Services   http.Handler
	City       http.Handler
}

// Group is one named handler in mount order
type Group struct {
	Name    string
	Handler http.Handler
}

// Groups returns the seven groups in mount order with defaults filled in
func (s Set) Groups() []Group {
	handlers := []http.Handler{s.College, s.Student, s.Login, s.Categories, s.States, s.Services, s.City}
	groups := make([]Group, len(Names))
	for i, name := range Names {
		h := handlers[i]
		if h == nil {
			h = NotImplemented(name)
		}
		groups[i] = Group{Name: name, Handler: h}
	}
	return groups
}

// NotImplemented answers every request with 501 and a JSON body naming the group
func NotImplemented(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotImplemented)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "route group not implemented",
			"group": name,
		})
	})
}
