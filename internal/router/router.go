package router

import (
	"net/http"

	"github.com/Totarae/PersonalAccount/internal/auth"
	"github.com/Totarae/PersonalAccount/internal/handlers"
	"github.com/Totarae/PersonalAccount/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options содержит необязательные части маршрутизатора.
type Options struct {
	CORSOrigins []string
	// Limiter ограничивает частоту запросов, nil отключает ограничение.
	Limiter *middleware.RateLimiter
}

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(chimiddleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Content-Encoding", auth.HeaderUserID, middleware.HeaderRequestID},
			ExposedHeaders: []string{middleware.HeaderRequestID},
			MaxAge:         300,
		}))
	}
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Get("/ping", handler.Ping)

	a := auth.New(logger)
	r.Group(func(r chi.Router) {
		r.Use(a.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.GzipMiddleware) // Gzip-сжатие JSON

			r.Post("/register", handler.Register)
			r.Route("/users", func(r chi.Router) {
				r.Post("/register", handler.Register)
				r.Get("/get", handler.GetUser)
			})

			r.Route("/bookmarks", func(r chi.Router) {
				r.Get("/get_only_shelves", handler.GetShelfIDs)
				r.Get("/get_shelves", handler.GetShelves)
				r.Get("/get_bookmarks", handler.GetBookmarks)
				r.Post("/create_shelf", handler.CreateShelf)
				r.Post("/add_bookmark", handler.AddBookmark)
				r.Post("/delete_bookmark_from_shelf", handler.RemoveBookmark)
				r.Post("/delete_shelf", handler.DeleteShelf)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/update", handler.UpdateTags)
				r.Get("/get", handler.GetTags)
				r.Post("/delete", handler.DeleteTags)
			})
		})

		if handler.Avatars != nil {
			r.Route("/files", func(r chi.Router) {
				r.Post("/icon-upload", handler.UploadIcon)
				r.Get("/icon-get-link", handler.GetIconLink)
			})
		}
	})

	return r
}
