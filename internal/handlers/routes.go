package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, h *Handler) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return h.tokens.Middleware(fn)
	}

	r.HandleFunc("/account/register", h.Register).Methods("POST")
	r.HandleFunc("/account/login", h.Login).Methods("POST")
	r.Handle("/account/update", authed(h.UpdateAccount)).Methods("PUT")
	r.Handle("/account/delete", authed(h.DeleteAccount)).Methods("DELETE")

	r.HandleFunc("/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")

	r.HandleFunc("/posts", h.ListPosts).Methods("GET")
	r.Handle("/posts", authed(h.CreatePost)).Methods("POST")
	r.HandleFunc("/posts/{postId:[0-9]+}", h.GetPost).Methods("GET")
	r.Handle("/posts/{postId:[0-9]+}", authed(h.UpdatePost)).Methods("PUT")
	r.Handle("/posts/{postId:[0-9]+}", authed(h.DeletePost)).Methods("DELETE")

	r.HandleFunc("/posts/{postId:[0-9]+}/reviews", h.ListReviews).Methods("GET")
	r.Handle("/posts/{postId:[0-9]+}/reviews", authed(h.CreateReview)).Methods("POST")
	r.HandleFunc("/posts/{postId:[0-9]+}/reviews/{reviewId:[0-9]+}", h.GetReview).Methods("GET")
	r.Handle("/posts/{postId:[0-9]+}/reviews/{reviewId:[0-9]+}", authed(h.UpdateReview)).Methods("PUT")
	r.Handle("/posts/{postId:[0-9]+}/reviews/{reviewId:[0-9]+}", authed(h.DeleteReview)).Methods("DELETE")

	r.Handle("/images", authed(h.ListImages)).Methods("GET")
	r.Handle("/images/upload", authed(h.UploadImage)).Methods("POST")
	r.Handle("/images/{filename}", authed(h.GetImage)).Methods("GET")
	r.Handle("/images/{filename}", authed(h.DeleteImage)).Methods("DELETE")
}
