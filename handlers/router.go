package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(RateLimit(app))

	mux.Get("/health", MakeHandler(app, HandleHealth))
	mux.Get("/metrics", MakeHandler(app, HandleMetrics))

	stickybanRoutes := func(r chi.Router) {
		r.Use(AdminIdentity(app))
		r.Get("/", MakeHandler(app, HandleAllStickybans))
		r.Post("/Whitelist", MakeHandler(app, HandleWhitelist))

		r.Get("/{id}/Match/Cid", MakeHandler(app, HandleMatchedCids))
		r.Get("/{id}/Match/Ckey", MakeHandler(app, HandleMatchedCkeys))
		r.Get("/{id}/Match/Ip", MakeHandler(app, HandleMatchedIps))

		r.Get("/Cid", MakeHandler(app, HandleStickybansByCid))
		r.Get("/Ckey", MakeHandler(app, HandleStickybansByCkey))
		r.Get("/Ip", MakeHandler(app, HandleStickybansByIp))
	}

	if base := app.Config().BasePath; base == "/" {
		mux.Group(stickybanRoutes)
	} else {
		mux.Route(base, stickybanRoutes)
	}

	return mux
}
