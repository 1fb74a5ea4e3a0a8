package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "radblog/internal/errors"
	"radblog/internal/media/sniffer"
	"radblog/internal/middleware"
	"radblog/internal/models"
	"radblog/internal/service"
)

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"authorId"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPostResponse(post models.Post) postResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Tags:      tags,
		AuthorID:  post.AuthorID,
		Likes:     post.Likes,
		CreatedAt: post.CreatedAt,
	}
}

func toPostResponses(posts []models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostResponse(post))
	}
	return out
}

// CreatePost handles the multipart create form: title, content, tags and an
// optional image. The publisher gate has already vetted the identity.
func (h HandlerSet) CreatePost(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))

	fields := map[string]string{}
	if title == "" {
		fields["title"] = "required"
	}
	if content == "" {
		fields["content"] = "required"
	}
	if len(fields) > 0 {
		h.respondError(c, &apperrors.ValidationError{Fields: fields})
		return
	}

	input := service.CreatePostInput{
		Title:   title,
		Content: content,
		Tags:    parseTags(c.PostFormArray("tags")),
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()

		if header.Size > h.cfg.Uploads.MaxSizeBytes {
			h.respondError(c, apperrors.NewValidation("image", "file too large"))
			return
		}

		data, readErr := io.ReadAll(io.LimitReader(file, h.cfg.Uploads.MaxSizeBytes+1))
		if readErr != nil {
			h.respondError(c, apperrors.NewValidation("image", "unreadable file"))
			return
		}
		if int64(len(data)) > h.cfg.Uploads.MaxSizeBytes {
			h.respondError(c, apperrors.NewValidation("image", "file too large"))
			return
		}

		input.Image = &service.ImageUpload{
			Data:         data,
			DeclaredMIME: sniffer.DeclaredMIME(header.Header),
		}
	}

	post, err := h.postService.Create(c.Request.Context(), identity, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": toPostResponse(post)})
}

// parseTags accepts either repeated tags fields or one comma-separated value.
func parseTags(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag := strings.TrimSpace(v); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (h HandlerSet) ListPosts(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", h.cfg.Pagination.DefaultPageSize)

	result, err := h.postService.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       toPostResponses(result.Items),
		"page":       result.Page,
		"totalPages": result.TotalPages,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (h HandlerSet) MyPosts(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	posts, err := h.postService.ListMine(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toPostResponses(posts)})
}

func (h HandlerSet) GetPost(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toPostResponse(post)})
}
