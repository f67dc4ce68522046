package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/config"
	"github.com/tastebook/tastebook/internal/storage"
	"github.com/tastebook/tastebook/internal/store"
)

// Handler carries the collaborators every route needs.
type Handler struct {
	cfg      *config.Config
	log      *logrus.Entry
	users    store.UserStore
	posts    store.PostStore
	reviews  store.ReviewStore
	images   store.ImageStore
	tokens   *auth.Tokens
	uploads  storage.Storage
	validate *validator.Validate
}

func New(
	logger *logrus.Logger,
	cfg *config.Config,
	users store.UserStore,
	posts store.PostStore,
	reviews store.ReviewStore,
	images store.ImageStore,
	tokens *auth.Tokens,
	uploads storage.Storage,
) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      logger.WithField("component", "handlers"),
		users:    users,
		posts:    posts,
		reviews:  reviews,
		images:   images,
		tokens:   tokens,
		uploads:  uploads,
		validate: validator.New(),
	}
}
