package model

import (
	"time"

	"github.com/lib/pq"
)

// Movie is a primary entity. ActorList and Liked are transient: they are
// populated per request by the batch enrichment phase, never stored on
// the row. Liked stays nil for anonymous viewers so it is omitted from
// the response instead of rendered as false.
type Movie struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Body         string         `json:"body"`
	YearReleased string         `json:"yearReleased"`
	Languages    pq.StringArray `json:"languages"`
	LikesCount   int64          `json:"likesCount"`
	ActorList    []string       `json:"actorList"`
	Liked        *bool          `json:"liked,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type MovieList struct {
	Movies      []*Movie `json:"movies"`
	MoviesCount int      `json:"moviesCount"`
}

// ListFilter composes only the clauses whose parameter is present.
// FavoritedBy is a username; the service resolves it to a user id before
// the repository sees it.
type ListFilter struct {
	Actor        *string
	YearReleased *string
	FavoritedBy  *string
	Offset       int
	Limit        int
}
