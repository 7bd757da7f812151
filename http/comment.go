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

func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.handleListComments).Methods("GET")
}

// handleCreateComment handles the route "POST /posts/{id}/comments".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}

	var comment domain.Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid comment data."))
		return
	}
	me := auth.GetUser(r.Context())
	comment.PostID = postId
	comment.UserID = me.ID

	if err := s.cs.Create(r.Context(), &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment.User = domain.User{ID: me.ID, Nickname: me.Nickname}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&comment); err != nil {
		errs.LogError(r, err)
	}
}

// handleListComments handles the route "GET /posts/{id}/comments".
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}

	comments, err := s.cs.ByPostID(r.Context(), postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(comments); err != nil {
		errs.LogError(r, err)
	}
}
