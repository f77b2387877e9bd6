package http

import (
	"net/http"
	"time"

	"wavewatch/auth"
	"wavewatch/store"
	"wavewatch/tmdb"
	"wavewatch/world"
	wwws "wavewatch/ws"

	"github.com/gorilla/mux"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(authService *auth.Service, engine *world.Engine, feed *wwws.Feed, store store.Store, metadata tmdb.Lookups, adminUsers []string) *Server {
	router := mux.NewRouter()
	handlers := NewHandlers(authService, engine, feed, store, metadata)

	server := &Server{
		router:   router,
		handlers: handlers,
	}

	server.setupRoutes(authService, adminUsers)
	return server
}

func (s *Server) setupRoutes(authService *auth.Service, adminUsers []string) {
	s.router.Use(LoggingMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware)

	// CSRF note: SameSite=Lax on the session cookie prevents cross-site POST
	// requests from including the cookie, providing CSRF protection for all
	// state-changing endpoints without needing a token-based scheme.

	loginLimiter := NewRateLimiter(PerMinute(5), 5)
	registerLimiter := NewRateLimiter(PerMinute(3), 3)

	s.router.Handle("/api/auth/register", registerLimiter.Middleware(http.HandlerFunc(s.handlers.Register))).Methods("POST")
	s.router.Handle("/api/auth/login", loginLimiter.Middleware(http.HandlerFunc(s.handlers.Login))).Methods("POST")

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(authService))

	protected.HandleFunc("/auth/logout", s.handlers.Logout).Methods("POST")

	protected.HandleFunc("/world/enter", s.handlers.EnterWorld).Methods("POST")
	protected.HandleFunc("/world/leave", s.handlers.LeaveWorld).Methods("POST")
	protected.HandleFunc("/world/players", s.handlers.ListPlayers).Methods("GET")
	protected.HandleFunc("/world/appearance", s.handlers.UpdateAppearance).Methods("POST")
	protected.HandleFunc("/chat/messages", s.handlers.RecentMessages).Methods("GET")

	protected.HandleFunc("/cinema/rooms", s.handlers.ListCinemaRooms).Methods("GET")
	protected.HandleFunc("/cinema/sessions", s.handlers.ListCinemaSessions).Methods("GET")
	protected.HandleFunc("/stadium/matches", s.handlers.ListStadiumMatches).Methods("GET")

	protected.HandleFunc("/metadata/movies/search", s.handlers.SearchMovies).Methods("GET")
	protected.HandleFunc("/metadata/movies/{movieId}", s.handlers.GetMovie).Methods("GET")

	// Schedule administration; reached from the portal's admin panel and
	// limited to the allowlisted usernames.
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(AdminMiddleware(s.handlers.store, adminUsers))
	admin.HandleFunc("/cinema/rooms", s.handlers.CreateCinemaRoom).Methods("POST")
	admin.HandleFunc("/cinema/sessions", s.handlers.CreateCinemaSession).Methods("POST")
	admin.HandleFunc("/stadium/matches", s.handlers.CreateStadiumMatch).Methods("POST")

	// WebSocket route (protected)
	wsRouter := s.router.PathPrefix("/ws").Subrouter()
	wsRouter.Use(AuthMiddleware(authService))
	wsRouter.HandleFunc("/world", s.handlers.HandleWebSocket)

	// Catch-all for unmatched API routes — return JSON 404 instead of SPA HTML
	s.router.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) GetHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
