package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/auth"
	"chirper/crud"
	"chirper/domain"
	"chirper/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/users/{user_id:[0-9]+}/posts", s.handleListUserPosts).Methods("GET")
	r.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/retweet", s.requireAuth(s.handleRetweet)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
	r.HandleFunc("/posts/{id:[0-9]+}/images", s.requireAuth(s.handleUploadPostImages)).Methods("POST")
	r.HandleFunc("/hashtags/{name}/posts", s.handleListHashtagPosts).Methods("GET")
}

// handleListUserPosts handles the route "GET /users/{user_id}/posts".
// It returns the user's original posts, enriched with author, images and
// likers. Retweets never appear here. An id of 0 means the authed caller.
func (s *Server) handleListUserPosts(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userId < 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	if userId == 0 {
		me := auth.GetUser(r.Context())
		if me == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in."))
			return
		}
		userId = me.ID
	}

	posts, err := s.ps.ByUserID(r.Context(), userId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreatePost handles the route "POST /posts".
// It creates a post for the authed user and links any #tags found in the body.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var post domain.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post data."))
		return
	}
	me := auth.GetUser(r.Context())
	post.UserID = me.ID
	post.RetweetsID = nil

	if err := s.ps.Create(r.Context(), &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.hs.Link(r.Context(), &post, crud.ExtractTags(post.Body)); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	created, err := s.ps.ByID(r.Context(), post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		errs.LogError(r, err)
	}
}

// handleRetweet handles the route "POST /posts/{id}/retweet".
func (s *Server) handleRetweet(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	retweet, err := s.ps.Retweet(r.Context(), me.ID, postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(retweet); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeletePost handles the route "DELETE /posts/{id}".
// Only the author may delete a post; its images go with it.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}

	post, err := s.ps.ByID(r.Context(), postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	me := auth.GetUser(r.Context())
	if post.UserID != me.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this post."))
		return
	}

	if err := s.ps.Delete(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.is.DeleteByPostID(r.Context(), postId); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"id": postId})
}

// handleUploadPostImages handles the route "POST /posts/{id}/images".
// It attaches up to MaxImagesPerPost validated jpeg/png files to the post.
func (s *Server) handleUploadPostImages(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(mux.Vars(r)["id"])
	if postId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}

	post, err := s.ps.ByID(r.Context(), postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	me := auth.GetUser(r.Context())
	if post.UserID != me.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this post."))
		return
	}

	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid upload data."))
		return
	}
	files := r.MultipartForm.File["images"]
	if len(post.Images)+len(files) > domain.MaxImagesPerPost {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID,
			"Too many images, not more than %d allowed.", domain.MaxImagesPerPost))
		return
	}

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		defer file.Close()

		img := &domain.Image{
			PostID:   postId,
			File:     file,
			Filename: fileHeader.Filename,
		}
		if err := s.is.Create(r.Context(), img); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	images, err := s.is.ByPostID(r.Context(), postId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.Images = images

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(post); err != nil {
		errs.LogError(r, err)
	}
}

// handleListHashtagPosts handles the route "GET /hashtags/{name}/posts".
func (s *Server) handleListHashtagPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.hs.PostsByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		errs.LogError(r, err)
	}
}
