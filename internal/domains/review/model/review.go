package model

import (
	"time"

	usermodel "moviehub-backend/internal/domains/user/model"
)

// Review is a primary entity ("article" on the wire). The slug is unique
// and immutable once assigned unless the title changes on update.
// TagList, Favorited and Author.Following are transient per-request
// fields filled by the batch enrichment phase; Favorited and Following
// stay nil for anonymous viewers.
type Review struct {
	ID             int64             `json:"id"`
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Body           string            `json:"body"`
	MovieID        int64             `json:"movieId"`
	FavoritesCount int64             `json:"favoritesCount"`
	TagList        []string          `json:"tagList"`
	Favorited      *bool             `json:"favorited,omitempty"`
	Author         usermodel.Profile `json:"author"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type ReviewList struct {
	Articles     []*Review `json:"articles"`
	ReviewsCount int       `json:"reviewsCount"`
}

// ListFilter composes only the clauses whose parameter is present.
// FavoritedBy is a username; the service resolves it to a user id before
// the repository sees it.
type ListFilter struct {
	MovieID     *int64
	Author      *string
	Tag         *string
	FavoritedBy *string
	Offset      int
	Limit       int
}
