package models

import "time"

type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  *string
	Tags      []string
	AuthorID  string
	Likes     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPage is one page of the public listing.
type PostPage struct {
	Items      []Post
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}
