package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"vidtube/auth"
	"vidtube/comments"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/likes"
	"vidtube/logging"
	"vidtube/metrics"
	"vidtube/playlists"
	"vidtube/ratelimit"
	"vidtube/storage"
	"vidtube/subscriptions"
	"vidtube/tweets"
	"vidtube/users"
	"vidtube/videos"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type App struct {
	db     *db.CompatDB
	media  storage.MediaStore
	cfg    Config
	logger *slog.Logger
}

// corsOptions allows cookies only for an explicit origin list. A wildcard
// origin is served without credentials.
func corsOptions(origins []string) cors.Options {
	credentials := len(origins) > 0
	for _, o := range origins {
		if o == "*" {
			credentials = false
		}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}
}

func (a *App) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.db.PingContext(ctx); err != nil {
		logging.FromContext(r.Context()).Error("healthcheck ping failed", "err", err)
		httputil.Fail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}

func (a *App) routes() http.Handler {
	uploadLimit := a.cfg.MaxUploadMB << 20

	authH := &auth.Handler{
		DB:    a.db,
		Media: a.media,
		Tokens: auth.TokenConfig{
			AccessSecret:  a.cfg.AccessTokenSecret,
			AccessTTL:     a.cfg.AccessTokenExpiry,
			RefreshSecret: a.cfg.RefreshTokenSecret,
			RefreshTTL:    a.cfg.RefreshTokenExpiry,
		},
		CookieSecure:   a.cfg.CookieSecure,
		MaxUploadBytes: uploadLimit,
	}
	usersH := &users.Handler{DB: a.db}
	videosH := &videos.Handler{DB: a.db, Media: a.media, MaxUploadBytes: uploadLimit}
	commentsH := &comments.Handler{DB: a.db}
	likesH := &likes.Handler{DB: a.db}
	tweetsH := &tweets.Handler{DB: a.db}
	playlistsH := &playlists.Handler{DB: a.db}
	subsH := &subscriptions.Handler{DB: a.db}

	authLimiter := ratelimit.New(a.cfg.AuthRateLimit, time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(a.cfg.CORSOrigins)))
	r.Use(metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", a.handleHealthcheck)

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(ratelimit.Middleware(authLimiter))
				r.Post("/register", authH.HandleRegister)
				r.Post("/login", authH.HandleLogin)
				r.Post("/refresh-token", authH.HandleRefreshToken)
			})
			r.With(authH.OptionalAuth).Get("/c/{username}", usersH.HandleChannelProfile)

			r.Group(func(r chi.Router) {
				r.Use(authH.AuthMiddleware)
				r.Post("/logout", authH.HandleLogout)
				r.Post("/change-password", authH.HandleChangePassword)
				r.Get("/current-user", authH.HandleCurrentUser)
				r.Patch("/update-account", authH.HandleUpdateAccount)
				r.Patch("/avatar", authH.HandleUpdateAvatar)
				r.Patch("/cover-image", authH.HandleUpdateCoverImage)
				r.Get("/history", usersH.HandleWatchHistory)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.With(authH.OptionalAuth).Get("/", videosH.HandleListVideos)
			r.With(authH.OptionalAuth).Get("/{videoId}", videosH.HandleGetVideo)

			r.Group(func(r chi.Router) {
				r.Use(authH.AuthMiddleware)
				r.Post("/", videosH.HandlePublishVideo)
				r.Patch("/{videoId}", videosH.HandleUpdateVideo)
				r.Delete("/{videoId}", videosH.HandleDeleteVideo)
				r.Patch("/toggle/publish/{videoId}", videosH.HandleTogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(authH.OptionalAuth).Get("/{videoId}", commentsH.HandleListComments)

			r.Group(func(r chi.Router) {
				r.Use(authH.AuthMiddleware)
				r.Post("/{videoId}", commentsH.HandleAddComment)
				r.Patch("/c/{commentId}", commentsH.HandleUpdateComment)
				r.Delete("/c/{commentId}", commentsH.HandleDeleteComment)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(authH.AuthMiddleware)
			r.Post("/toggle/v/{videoId}", likesH.HandleToggleVideoLike)
			r.Post("/toggle/c/{commentId}", likesH.HandleToggleCommentLike)
			r.Post("/toggle/t/{tweetId}", likesH.HandleToggleTweetLike)
			r.Get("/videos", likesH.HandleLikedVideos)
			r.Get("/tweets", likesH.HandleLikedTweets)
		})

		r.Route("/tweets", func(r chi.Router) {
			r.With(authH.OptionalAuth).Get("/user/{userId}", tweetsH.HandleUserTweets)

			r.Group(func(r chi.Router) {
				r.Use(authH.AuthMiddleware)
				r.Post("/", tweetsH.HandleCreateTweet)
				r.Patch("/{tweetId}", tweetsH.HandleUpdateTweet)
				r.Delete("/{tweetId}", tweetsH.HandleDeleteTweet)
			})
		})

		r.Route("/playlists", func(r chi.Router) {
			r.With(authH.OptionalAuth).Get("/user/{userId}", playlistsH.HandleUserPlaylists)
			r.With(authH.OptionalAuth).Get("/{playlistId}", playlistsH.HandleGetPlaylist)

			r.Group(func(r chi.Router) {
				r.Use(authH.AuthMiddleware)
				r.Post("/", playlistsH.HandleCreatePlaylist)
				r.Patch("/add/{videoId}/{playlistId}", playlistsH.HandleAddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlistsH.HandleRemoveVideo)
				r.Patch("/{playlistId}", playlistsH.HandleUpdatePlaylist)
				r.Delete("/{playlistId}", playlistsH.HandleDeletePlaylist)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/c/{channelId}", subsH.HandleChannelSubscribers)
			r.Get("/u/{subscriberId}", subsH.HandleSubscribedChannels)
			r.With(authH.AuthMiddleware).Post("/c/{channelId}", subsH.HandleToggleSubscription)
		})
	})

	return r
}
