package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"chirper/auth"
	"chirper/crud"
	"chirper/domain"
	"chirper/errs"
	"chirper/session"
)

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It resolves the request identity and
// performs authorization before handing things over to one of the crud
// services.
type Server struct {
	router   *mux.Router
	logger   *zap.Logger
	sessions *session.Store
	us       domain.UserService
	fs       domain.FollowService
	ps       domain.PostService
	ls       domain.LikeService
	cs       domain.CommentService
	hs       domain.HashtagService
	is       domain.ImageService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, sessions *session.Store, logger *zap.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		sessions: sessions,
		us:       services.User,
		fs:       services.Follow,
		ps:       services.Post,
		ls:       services.Like,
		cs:       services.Comment,
		hs:       services.Hashtag,
		is:       services.Image,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerLikeRoutes(s.router)
	s.registerCommentRoutes(s.router)

	// Serve uploaded images statically.
	s.router.PathPrefix("/" + domain.ImagesBaseDir + "/").
		Handler(http.StripPrefix("/"+domain.ImagesBaseDir+"/",
			http.FileServer(http.Dir(domain.ImagesBaseDir))))

	// Set up middleware that needs to run on every request.
	s.router.Use(s.logRequest, setContentTypeJSON, s.checkUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs every request once, with its duration.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// The checkUser middleware resolves the session cookie to a full user record
// and stores it in the request context. A missing or unknown token leaves
// the request anonymous; a session-store outage is answered as such and is
// never mistaken for anonymity.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.sessions.UserID(r.Context(), cookie.Value)
		if err == session.ErrNoSession {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		user, err := s.us.ByID(r.Context(), userID)
		if err != nil {
			if errs.ErrorCode(err) == errs.ENOTFOUND {
				// The account is gone, the session is stale.
				next.ServeHTTP(w, r)
				return
			}
			errs.ReturnError(w, r, err)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects anonymous requests.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in."))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// requireAnon rejects requests that already carry an identity.
func (s *Server) requireAnon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are already logged in."))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// ServeHTTP makes the server a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) error {
	return http.ListenAndServe(":"+strconv.Itoa(port), s)
}
