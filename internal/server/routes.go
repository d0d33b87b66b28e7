package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daily-bread/daily-bread-api/internal/feed"
	"github.com/daily-bread/daily-bread-api/pkg/response"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Get home route
	r.Get("/", s.ServerIsWorking)

	r.Route("/daily-bread-api/v1", func(r chi.Router) {
		s.loadFeedRoutes(r)
	})
	r.Get("/daily-bread-api/v1", s.ServerIsWorking)

	return r
}

func (s *Server) ServerIsWorking(w http.ResponseWriter, r *http.Request) {
	resp := make(map[string]string)
	resp["message"] = "Welcome to Daily Bread api"
	response.Success(w, resp, "Success")
}

func (s *Server) loadFeedRoutes(router chi.Router) {
	feedHandler := feed.NewFeedHandler(s.feedService)

	router.Post("/feed/generate-batch", feedHandler.GenerateBatchHandler)
	router.Get("/feed", feedHandler.GetFeedHandler)
	router.Patch("/feed/toggle-like", feedHandler.ToggleLikeHandler)
	router.Patch("/feed/hide", feedHandler.HideFeedItemHandler)
	router.Get("/feed/{feedItemID}/comments", feedHandler.GetCommentsHandler)
	router.Post("/comments/add", feedHandler.AddCommentHandler)
	router.Delete("/comments/{commentID}", feedHandler.DeleteCommentHandler)
	router.Get("/cache/stats", feedHandler.GetCacheStatsHandler)
}
