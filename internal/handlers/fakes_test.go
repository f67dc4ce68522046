package handlers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tastebook/tastebook/internal/aggregate"
	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/config"
	"github.com/tastebook/tastebook/internal/models"
	"github.com/tastebook/tastebook/internal/store"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *fakeUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakePostStore struct {
	mu     sync.Mutex
	posts  map[uint]*models.Post
	nextID uint
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uint]*models.Post)}
}

func (s *fakePostStore) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	post.ID = s.nextID
	s.posts[post.ID] = post
	return nil
}

func (s *fakePostStore) FindByID(_ context.Context, id uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.posts[id]; ok {
		clone := *post
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakePostStore) FindOwned(_ context.Context, id, userID uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.posts[id]; ok && post.UserID == userID {
		clone := *post
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakePostStore) List(_ context.Context, filter store.PostFilter) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []models.Post
	for _, post := range s.posts {
		if filter.MinViews != nil && post.Views < *filter.MinViews {
			continue
		}
		if filter.MinRating != nil && post.AverageRating < *filter.MinRating {
			continue
		}
		posts = append(posts, *post)
	}
	switch filter.Sort {
	case "rating":
		sort.Slice(posts, func(i, j int) bool { return posts[i].AverageRating > posts[j].AverageRating })
	case "views":
		sort.Slice(posts, func(i, j int) bool { return posts[i].Views > posts[j].Views })
	default:
		sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	}
	return posts, nil
}

func (s *fakePostStore) Save(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *fakePostStore) Delete(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, post.ID)
	return nil
}

func (s *fakePostStore) IncrementViews(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	post.Views++
	return nil
}

type fakeReviewStore struct {
	mu      sync.Mutex
	reviews map[uint]*models.Review
	nextID  uint
	posts   *fakePostStore
}

func newFakeReviewStore(posts *fakePostStore) *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[uint]*models.Review), posts: posts}
}

func (s *fakeReviewStore) Create(_ context.Context, review *models.Review) error {
	s.posts.mu.Lock()
	post, ok := s.posts.posts[review.PostID]
	if !ok {
		s.posts.mu.Unlock()
		return store.ErrNotFound
	}
	post.AverageRating, post.ReviewCount = aggregate.Next(post.AverageRating, post.ReviewCount, review.Rating)
	s.posts.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	review.ID = s.nextID
	s.reviews[review.ID] = review
	return nil
}

func (s *fakeReviewStore) FindByID(_ context.Context, id uint) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if review, ok := s.reviews[id]; ok {
		clone := *review
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeReviewStore) FindOwned(_ context.Context, id, userID uint) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if review, ok := s.reviews[id]; ok && review.UserID == userID {
		clone := *review
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeReviewStore) ListByPost(_ context.Context, postID uint) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reviews []models.Review
	for _, review := range s.reviews {
		if review.PostID == postID {
			reviews = append(reviews, *review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	return reviews, nil
}

func (s *fakeReviewStore) Save(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	s.reviews[review.ID] = review
	s.mu.Unlock()
	s.rebuild(review.PostID)
	return nil
}

func (s *fakeReviewStore) Delete(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	delete(s.reviews, review.ID)
	s.mu.Unlock()
	s.rebuild(review.PostID)
	return nil
}

func (s *fakeReviewStore) rebuild(postID uint) {
	s.mu.Lock()
	sum, count := 0, int64(0)
	for _, review := range s.reviews {
		if review.PostID == postID {
			sum += review.Rating
			count++
		}
	}
	s.mu.Unlock()

	s.posts.mu.Lock()
	defer s.posts.mu.Unlock()
	if post, ok := s.posts.posts[postID]; ok {
		if count == 0 {
			post.AverageRating, post.ReviewCount = 0, 0
		} else {
			post.AverageRating, post.ReviewCount = float64(sum)/float64(count), count
		}
	}
}

type fakeImageStore struct {
	mu     sync.Mutex
	images []models.Image
	nextID uint
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{}
}

func (s *fakeImageStore) Create(_ context.Context, image *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	image.ID = s.nextID
	s.images = append(s.images, *image)
	return nil
}

func (s *fakeImageStore) FindOwned(_ context.Context, filename string, userID uint) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].Filename == filename && s.images[i].UserID == userID {
			clone := s.images[i]
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeImageStore) Delete(_ context.Context, image *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == image.ID {
			s.images = append(s.images[:i], s.images[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeImageStore) ListByUser(_ context.Context, userID uint) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var images []models.Image
	for _, image := range s.images {
		if image.UserID == userID {
			images = append(images, image)
		}
	}
	return images, nil
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, filename string, content io.Reader, _ string) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = data
	return nil
}

func (s *fakeStorage) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.files[filename]; ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeStorage) Delete(_ context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filename)
	return nil
}

type testEnv struct {
	router  *mux.Router
	handler *Handler
	users   *fakeUserStore
	posts   *fakePostStore
	reviews *fakeReviewStore
	images  *fakeImageStore
	uploads *fakeStorage
	tokens  *auth.Tokens
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := auth.NewTokens("handler-test-secret", time.Hour, 4)
	users := newFakeUserStore()
	posts := newFakePostStore()
	reviews := newFakeReviewStore(posts)
	images := newFakeImageStore()
	uploads := newFakeStorage()

	h := New(logger, &config.Config{}, users, posts, reviews, images, tokens, uploads)

	r := mux.NewRouter()
	RegisterRoutes(r, h)

	return &testEnv{
		router:  r,
		handler: h,
		users:   users,
		posts:   posts,
		reviews: reviews,
		images:  images,
		uploads: uploads,
		tokens:  tokens,
	}
}
