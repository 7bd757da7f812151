package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/auth"
	"chirper/domain"
	"chirper/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id:[0-9]+}/like", s.requireAuth(s.handleCreateLike)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/like", s.requireAuth(s.handleDeleteLike)).Methods("DELETE")
}

// handleCreateLike handles the route "POST /posts/{id}/like".
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	like := domain.Like{UserID: me.ID, PostID: postId}
	if err := s.ls.Create(r.Context(), &like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"post_id": postId, "user_id": me.ID})
}

// handleDeleteLike handles the route "DELETE /posts/{id}/like".
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	like := domain.Like{UserID: me.ID, PostID: postId}
	if err := s.ls.Delete(r.Context(), &like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"post_id": postId, "user_id": me.ID})
}
