package handlers

import (
	"net/http"

	v1chat "github.com/januslabs/janus/internal/api/v1/handlers/chat"
	v1cookies "github.com/januslabs/janus/internal/api/v1/handlers/cookies"
	v1health "github.com/januslabs/janus/internal/api/v1/handlers/health"
	v1models "github.com/januslabs/janus/internal/api/v1/handlers/models"
	v1mware "github.com/januslabs/janus/internal/api/v1/middleware"
	"github.com/januslabs/janus/internal/services"
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.Use(v1mware.RequestID())
	router.Use(v1mware.Observe(services.GetMetricsService()))

	// Public routes (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		v1health.HandleHealth(services.GetSessionService(), w, r)
	}).Methods("GET")
	router.Handle("/metrics", services.GetMetricsService().Handler()).Methods("GET")

	// v1 routes: the OpenAI-compatible surface (require auth)
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(v1mware.RequireAPIKey())
	v1.Handle("/chat/completions", v1mware.RateLimit("chat_completion")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChatCompletions(services.GetChatService(), w, r)
	}))).Methods("POST")
	v1.HandleFunc("/models", v1models.HandleListModels).Methods("GET")

	// api routes: session management (require auth)
	api := router.PathPrefix("/api").Subrouter()
	api.Use(v1mware.RequireAPIKey())
	api.Handle("/cookies", v1mware.RateLimit("cookie_update")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1cookies.HandleUpdateCookies(services.GetSessionService(), w, r)
	}))).Methods("POST")
}
