package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radblog/internal/config"
	apperrors "radblog/internal/errors"
	"radblog/internal/models"
	"radblog/internal/security"
	"radblog/internal/service"
)

type stubPostService struct {
	createCalled bool
	createInput  service.CreatePostInput
	createdBy    models.Identity
	createErr    error

	listPage     int
	listPageSize int
	listResult   models.PostPage

	mineIdentity models.Identity
	mineResult   []models.Post

	getErr error
}

func (s *stubPostService) Create(ctx context.Context, identity models.Identity, input service.CreatePostInput) (models.Post, error) {
	s.createCalled = true
	s.createdBy = identity
	s.createInput = input
	if s.createErr != nil {
		return models.Post{}, s.createErr
	}
	return models.Post{
		ID:        "post-1",
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		AuthorID:  identity.UserID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *stubPostService) ListAll(ctx context.Context, page, pageSize int) (models.PostPage, error) {
	s.listPage = page
	s.listPageSize = pageSize
	return s.listResult, nil
}

func (s *stubPostService) ListMine(ctx context.Context, identity models.Identity) ([]models.Post, error) {
	s.mineIdentity = identity
	return s.mineResult, nil
}

func (s *stubPostService) Get(ctx context.Context, id string) (models.Post, error) {
	if s.getErr != nil {
		return models.Post{}, s.getErr
	}
	return models.Post{ID: id}, nil
}

func handlerTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTAccessSecret:  "handler-test-secret",
			JWTRefreshSecret: "handler-refresh-secret",
			JWTAccessTTL:     time.Minute,
		},
		Pagination: config.PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Uploads: config.UploadsConfig{
			MaxSizeBytes: 1024 * 1024,
		},
	}
}

func postTestRouter(cfg *config.AppConfig, posts service.PostService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		postService: posts,
	}
	h.Register(engine.Group("/api"))
	return engine
}

func bearerFor(t *testing.T, cfg *config.AppConfig, roles ...models.Role) string {
	t.Helper()
	token, err := security.IssueAccessToken(cfg.Security.JWTAccessSecret, models.User{
		ID:    "user-9",
		Roles: roles,
	}, cfg.Security.JWTAccessTTL)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestListPosts(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{listResult: models.PostPage{
		Items:      []models.Post{{ID: "p1", Tags: []string{"x", "y"}}},
		Page:       2,
		PageSize:   5,
		Total:      11,
		TotalPages: 3,
	}}
	router := postTestRouter(cfg, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/post?page=2&pageSize=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, stub.listPage)
	assert.Equal(t, 5, stub.listPageSize)

	var body struct {
		Data       []map[string]any `json:"data"`
		Page       int              `json:"page"`
		TotalPages int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 3, body.TotalPages)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "p1", body.Data[0]["id"])
}

func TestListPostsDefaultsBadParams(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{}
	router := postTestRouter(cfg, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/post?page=abc&pageSize=", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.listPage)
	assert.Equal(t, 10, stub.listPageSize)
}

func multipartBody(t *testing.T, fields map[string]string, imageName string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestCreatePostRequiresAuth(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{}
	router := postTestRouter(cfg, stub)

	body, contentType := multipartBody(t, map[string]string{"title": "t", "content": "c"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/post/create", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, stub.createCalled, "no post may be created without a token")
}

func TestCreatePostRequiresPublisherRole(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{}
	router := postTestRouter(cfg, stub)

	body, contentType := multipartBody(t, map[string]string{"title": "t", "content": "c"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/post/create", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, stub.createCalled, "no post may be created without AUTHOR or ADMIN")
}

func TestCreatePost(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{}
	router := postTestRouter(cfg, stub)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Fresh post",
		"content": "Body text",
		"tags":    "go, backend ,api",
	}, "pic.png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	req := httptest.NewRequest(http.MethodPost, "/api/post/create", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleUser, models.RoleAuthor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, stub.createCalled)
	assert.Equal(t, "user-9", stub.createdBy.UserID)
	assert.Equal(t, "Fresh post", stub.createInput.Title)
	assert.Equal(t, []string{"go", "backend", "api"}, stub.createInput.Tags)
	require.NotNil(t, stub.createInput.Image)
	assert.NotEmpty(t, stub.createInput.Image.Data)
}

func TestCreatePostValidation(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{}
	router := postTestRouter(cfg, stub)

	body, contentType := multipartBody(t, map[string]string{"title": "  "}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/post/create", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleAuthor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, stub.createCalled)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "content")
}

func TestMyPosts(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{mineResult: []models.Post{{ID: "p1", AuthorID: "user-9"}}}
	router := postTestRouter(cfg, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/post/me", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, models.RoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-9", stub.mineIdentity.UserID)
}

func TestGetPostNotFound(t *testing.T) {
	cfg := handlerTestConfig()
	stub := &stubPostService{getErr: apperrors.ErrNotFound}
	router := postTestRouter(cfg, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/post/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
}
