package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"wavewatch/auth"
	"wavewatch/store"
	"wavewatch/tmdb"
	"wavewatch/world"
	wwws "wavewatch/ws"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Native clients send no Origin; browsers must be same origin.
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

type Handlers struct {
	authService *auth.Service
	engine      *world.Engine
	feed        *wwws.Feed
	store       store.Store
	metadata    tmdb.Lookups // nil when no TMDB key is configured
}

func NewHandlers(authService *auth.Service, engine *world.Engine, feed *wwws.Feed, store store.Store, metadata tmdb.Lookups) *Handlers {
	return &Handlers{
		authService: authService,
		engine:      engine,
		feed:        feed,
		store:       store,
		metadata:    metadata,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// Auth handlers

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.Register(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword), errors.Is(err, auth.ErrUserExists):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Register error: %v", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sessionID, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		} else {
			log.Printf("Login error: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	h.authService.GetSessionManager().SetSessionCookie(w, sessionID)

	user, err := h.store.GetUserByUsername(auth.SanitizeString(req.Username))
	if err != nil || user == nil {
		log.Printf("Login: failed to load user %q after auth: %v", req.Username, err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Login successful",
		"userId":   user.ID,
		"username": user.Username,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := auth.GetSessionFromRequest(r)
	if sessionID != "" {
		h.authService.Logout(sessionID)
		h.authService.GetSessionManager().ClearSessionCookie(w)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// World handlers

// EnterWorld is the session bootstrap: create-or-fetch the caller's profile,
// then hand back everything the scene needs to start rendering — the
// profile, the remote roster seed, and the recent chat history.
func (h *Handlers) EnterWorld(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.DisplayName = ""
	}

	if req.DisplayName == "" {
		user, err := h.store.GetUserByID(userID)
		if err != nil || user == nil {
			http.Error(w, "Failed to get user info", http.StatusInternalServerError)
			return
		}
		req.DisplayName = user.Username
	}

	profile, event, err := h.engine.EnterWorld(userID, req.DisplayName)
	if err != nil {
		if errors.Is(err, world.ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("EnterWorld error: %v", err)
		http.Error(w, "Failed to enter world", http.StatusInternalServerError)
		return
	}
	h.feed.Broadcast(event)

	// Roster or chat fetch failures degrade to an empty world rather than
	// blocking entry.
	players, err := h.engine.ListPlayers(userID)
	if err != nil {
		log.Printf("EnterWorld: player list failed: %v", err)
		players = nil
	}
	messages, err := h.engine.RecentMessages()
	if err != nil {
		log.Printf("EnterWorld: chat history failed: %v", err)
		messages = nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  profile,
		"players":  players,
		"messages": messages,
	})
}

func (h *Handlers) LeaveWorld(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := h.engine.LeaveWorld(userID)
	if err != nil {
		log.Printf("LeaveWorld error: %v", err)
		http.Error(w, "Failed to leave world", http.StatusInternalServerError)
		return
	}
	h.feed.Broadcast(event)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Left world"})
}

func (h *Handlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	players, err := h.engine.ListPlayers(userID)
	if err != nil {
		log.Printf("ListPlayers error: %v", err)
		http.Error(w, "Failed to list players", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, players)
}

func (h *Handlers) UpdateAppearance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req world.AppearanceView
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.engine.UpdateAppearance(userID, req)
	if err != nil {
		if errors.Is(err, world.ErrProfileNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("UpdateAppearance error: %v", err)
		http.Error(w, "Failed to update appearance", http.StatusInternalServerError)
		return
	}
	h.feed.Broadcast(event)

	writeJSON(w, http.StatusOK, event.Payload)
}

func (h *Handlers) RecentMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.engine.RecentMessages()
	if err != nil {
		log.Printf("RecentMessages error: %v", err)
		http.Error(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Schedule handlers

func (h *Handlers) ListCinemaRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.engine.CinemaRooms()
	if err != nil {
		log.Printf("ListCinemaRooms error: %v", err)
		http.Error(w, "Failed to list cinema rooms", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handlers) ListCinemaSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.engine.CinemaSchedule()
	if err != nil {
		log.Printf("ListCinemaSessions error: %v", err)
		http.Error(w, "Failed to list cinema sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handlers) ListStadiumMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.engine.StadiumSchedule()
	if err != nil {
		log.Printf("ListStadiumMatches error: %v", err)
		http.Error(w, "Failed to list stadium matches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// Admin handlers

func (h *Handlers) CreateCinemaRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	roomID, err := h.engine.AddCinemaRoom(req.Name)
	if err != nil {
		if errors.Is(err, world.ErrInvalidName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("CreateCinemaRoom error: %v", err)
		http.Error(w, "Failed to create cinema room", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"roomId": roomID})
}

func (h *Handlers) CreateCinemaSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID     int64  `json:"roomId"`
		MovieTitle string `json:"movieTitle"`
		TMDBID     int64  `json:"tmdbId"`
		StartsAt   int64  `json:"startsAt"`
		EndsAt     int64  `json:"endsAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Backfill the title from TMDB when only an id was supplied.
	if req.MovieTitle == "" && req.TMDBID > 0 && h.metadata != nil {
		movie, err := h.metadata.GetMovieDetails(r.Context(), req.TMDBID)
		if err != nil {
			log.Printf("CreateCinemaSession: TMDB lookup failed: %v", err)
		} else {
			req.MovieTitle = movie.Title
		}
	}

	sessionID, err := h.engine.ScheduleCinemaSession(req.RoomID, req.MovieTitle, req.TMDBID, req.StartsAt, req.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, world.ErrInvalidSchedule), errors.Is(err, world.ErrInvalidName), errors.Is(err, world.ErrRoomNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("CreateCinemaSession error: %v", err)
			http.Error(w, "Failed to create cinema session", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"sessionId": sessionID})
}

func (h *Handlers) CreateStadiumMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		StartsAt int64  `json:"startsAt"`
		EndsAt   int64  `json:"endsAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	matchID, err := h.engine.ScheduleStadiumMatch(req.Title, req.StartsAt, req.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, world.ErrInvalidSchedule), errors.Is(err, world.ErrInvalidName):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("CreateStadiumMatch error: %v", err)
			http.Error(w, "Failed to create stadium match", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"matchId": matchID})
}

// Metadata handlers

func (h *Handlers) SearchMovies(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		http.Error(w, "Metadata lookups not configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "Missing query parameter", http.StatusBadRequest)
		return
	}

	resp, err := h.metadata.SearchMovie(r.Context(), query)
	if err != nil {
		log.Printf("SearchMovies error: %v", err)
		http.Error(w, "Movie search failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		http.Error(w, "Metadata lookups not configured", http.StatusServiceUnavailable)
		return
	}

	vars := mux.Vars(r)
	movieID, err := strconv.ParseInt(vars["movieId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid movie ID", http.StatusBadRequest)
		return
	}

	movie, err := h.metadata.GetMovieDetails(r.Context(), movieID)
	if err != nil {
		log.Printf("GetMovie error: %v", err)
		http.Error(w, "Movie lookup failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// WebSocket handler

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.feed.HandleConnection(conn, userID)
}
