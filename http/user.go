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

func (s *Server) registerUserRoutes(r *mux.Router) {
	// Get the profile data of a specific user.
	r.HandleFunc("/users/{user_id:[0-9]+}", s.handleGetProfile).Methods("GET")

	// List whom a user follows, paginated.
	r.HandleFunc("/users/{user_id:[0-9]+}/followings", s.requireAuth(s.handleListFollowings)).Methods("GET")

	// Follow / unfollow a user.
	r.HandleFunc("/users/{user_id:[0-9]+}/follow", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/users/{user_id:[0-9]+}/follow", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")

	// Detach one of the authed user's own followers.
	r.HandleFunc("/followers/{user_id:[0-9]+}", s.requireAuth(s.handleRemoveFollower)).Methods("DELETE")

	// Update the authed user's nickname.
	r.HandleFunc("/nickname", s.requireAuth(s.handleUpdateNickname)).Methods("PATCH")
}

// userSummary is the trimmed user view used in followings listings.
type userSummary struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
}

// handleGetProfile handles the route "GET /users/{user_id}".
// It returns the user's public profile together with their aggregate counts.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}

	user, err := s.us.ByID(r.Context(), userId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err = s.setUserAssociationCounts(r, user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&user); err != nil {
		errs.LogError(r, err)
	}
}

// handleListFollowings handles the route "GET /users/{user_id}/followings".
// It returns a page of {id, nickname} entries. Pagination parameters that
// do not parse as non-negative integers are rejected rather than passed
// through to the database.
func (s *Server) handleListFollowings(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if userId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	limit, offset, err := parsePagination(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// The listing must 404 for an unknown user, not answer an empty page.
	if _, err := s.us.ByID(r.Context(), userId); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	followings, err := s.fs.Followings(r.Context(), userId, limit, offset)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	list := make([]userSummary, 0, len(followings))
	for _, u := range followings {
		list = append(list, userSummary{ID: u.ID, Nickname: u.Nickname})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(list); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateFollow handles the route "POST /users/{user_id}/follow".
// It creates the edge authed-user -> target. Following an already-followed
// user succeeds without creating a second edge.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	targetId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if targetId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	follow := domain.Follow{FollowerID: me.ID, FollowedID: targetId}
	if err := s.fs.Create(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"id": targetId})
}

// handleDeleteFollow handles the route "DELETE /users/{user_id}/follow".
// It removes the edge authed-user -> target, a no-op when absent.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	targetId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if targetId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	follow := domain.Follow{FollowerID: me.ID, FollowedID: targetId}
	if err := s.fs.Delete(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"id": targetId})
}

// handleRemoveFollower handles the route "DELETE /followers/{user_id}".
// The authed user detaches someone who follows them: the removed edge runs
// follower -> authed user, the inverse direction of an unfollow.
func (s *Server) handleRemoveFollower(w http.ResponseWriter, r *http.Request) {
	followerId, err := strconv.Atoi(mux.Vars(r)["user_id"])
	if followerId <= 0 || err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid id format."))
		return
	}
	me := auth.GetUser(r.Context())

	follow := domain.Follow{FollowerID: followerId, FollowedID: me.ID}
	if err := s.fs.Delete(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"id": followerId})
}

// handleUpdateNickname handles the route "PATCH /nickname".
// It updates the authed user's own nickname and returns the new value.
func (s *Server) handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid update data."))
		return
	}

	user := auth.GetUser(r.Context())
	user.Nickname = body.Nickname
	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"nickname": user.Nickname})
}

// setUserAssociationCounts takes a pointer to a user object, counts their
// posts, followings and followers at query time, and sets those numbers on
// the according fields. Nothing is cached; every call recomputes.
func (s *Server) setUserAssociationCounts(r *http.Request, user *domain.User) error {
	postCount, err := s.us.CountPosts(r.Context(), user.ID)
	if err != nil {
		return err
	}
	user.PostCount = postCount

	followingCount, err := s.us.CountFollowings(r.Context(), user.ID)
	if err != nil {
		return err
	}
	user.FollowingCount = followingCount

	followerCount, err := s.us.CountFollowers(r.Context(), user.ID)
	if err != nil {
		return err
	}
	user.FollowerCount = followerCount

	return nil
}

// parsePagination reads limit/offset query parameters. Missing parameters
// fall back to defaults; values that fail to parse as non-negative integers
// are rejected.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit, offset = 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, errs.Errorf(errs.EINVALID, "Invalid pagination.")
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, errs.Errorf(errs.EINVALID, "Invalid pagination.")
		}
	}
	return limit, offset, nil
}
