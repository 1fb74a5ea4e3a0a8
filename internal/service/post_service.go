package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"radblog/internal/config"
	apperrors "radblog/internal/errors"
	"radblog/internal/ids"
	"radblog/internal/media/sniffer"
	"radblog/internal/models"
	"radblog/internal/repository"
	"radblog/internal/storage"
)

const (
	PostCountKey = "posts:total"
	PostCountTTL = 5 * time.Minute
)

// ImageUpload is the raw file a create request carried, with whatever
// content type the client declared.
type ImageUpload struct {
	Data         []byte
	DeclaredMIME string
}

type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
	Image   *ImageUpload
}

// PostService implements post creation and the listing contracts.
type PostService interface {
	Create(ctx context.Context, identity models.Identity, input CreatePostInput) (models.Post, error)
	ListAll(ctx context.Context, page, pageSize int) (models.PostPage, error)
	ListMine(ctx context.Context, identity models.Identity) ([]models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
}

type postService struct {
	posts    repository.PostRepository
	uploader storage.Uploader
	cache    *redis.Client
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	uploader storage.Uploader,
	cache *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) PostService {
	return &postService{
		posts:    posts,
		uploader: uploader,
		cache:    cache,
		cfg:      cfg,
		log:      log,
	}
}

// Create uploads the image first, so a failed upload leaves no partial post
// behind. AuthorID comes from the caller's identity and never changes again.
func (s *postService) Create(ctx context.Context, identity models.Identity, input CreatePostInput) (models.Post, error) {
	var imageURL *string
	if input.Image != nil {
		url, err := s.storeImage(ctx, input.Image)
		if err != nil {
			return models.Post{}, err
		}
		imageURL = &url
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        ids.New(),
		Title:     input.Title,
		Content:   input.Content,
		ImageURL:  imageURL,
		Tags:      input.Tags,
		AuthorID:  identity.UserID,
		Likes:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	if err := s.posts.Create(storeCtx, post); err != nil {
		return models.Post{}, apperrors.Store(err)
	}

	s.invalidateCount(ctx)
	s.log.Info().Str("post_id", post.ID).Str("author_id", post.AuthorID).Msg("post created")
	return post, nil
}

func (s *postService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	if len(image.Data) == 0 {
		return "", apperrors.NewValidation("image", "empty file")
	}

	detected, err := sniffer.Detect(image.Data)
	if err != nil {
		return "", apperrors.NewValidation("image", "unsupported image type")
	}
	if image.DeclaredMIME != "" && image.DeclaredMIME != detected.MIME {
		return "", apperrors.NewValidation("image", fmt.Sprintf("declared %s but content is %s", image.DeclaredMIME, detected.MIME))
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Upload)
	defer cancel()

	url, err := s.uploader.Store(uploadCtx, image.Data, detected.MIME)
	if err != nil {
		return "", apperrors.Upload(err)
	}
	return url, nil
}

// ListAll is the public offset-paginated listing. Pages are 1-indexed and a
// page past the end yields empty items, not an error.
func (s *postService) ListAll(ctx context.Context, page, pageSize int) (models.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.Pagination.DefaultPageSize
	}
	if pageSize > s.cfg.Pagination.MaxPageSize {
		pageSize = s.cfg.Pagination.MaxPageSize
	}

	total, err := s.totalCount(ctx)
	if err != nil {
		return models.PostPage{}, err
	}

	result := models.PostPage{
		Items:      []models.Post{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	offset := (page - 1) * pageSize
	if offset >= total {
		return result, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	items, err := s.posts.List(storeCtx, pageSize, offset)
	if err != nil {
		return models.PostPage{}, apperrors.Store(err)
	}
	result.Items = items
	return result, nil
}

func (s *postService) ListMine(ctx context.Context, identity models.Identity) ([]models.Post, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	posts, err := s.posts.ListByAuthor(storeCtx, identity.UserID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (models.Post, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	post, err := s.posts.GetByID(storeCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return models.Post{}, apperrors.ErrNotFound
		}
		return models.Post{}, apperrors.Store(err)
	}
	return post, nil
}

// totalCount serves the listing denominator from redis when warm, falling
// back to the store. Cache trouble degrades to a count query, never an error.
func (s *postService) totalCount(ctx context.Context) (int, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, PostCountKey).Result()
		if err == nil {
			if total, convErr := strconv.Atoi(cached); convErr == nil {
				return total, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("post count cache read failed")
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	total, err := s.posts.Count(storeCtx)
	if err != nil {
		return 0, apperrors.Store(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, PostCountKey, strconv.Itoa(total), PostCountTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("post count cache write failed")
		}
	}
	return total, nil
}

func (s *postService) invalidateCount(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, PostCountKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("post count cache invalidation failed")
	}
}
