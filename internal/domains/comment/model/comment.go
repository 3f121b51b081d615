package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	usermodel "moviehub-backend/internal/domains/user/model"
)

// Comment belongs to a review (referenced by slug on the wire) and an
// author.
type Comment struct {
	ID        int64             `json:"id"`
	Body      string            `json:"body"`
	ReviewID  int64             `json:"-"`
	Author    usermodel.Profile `json:"author"`
	CreatedAt time.Time         `json:"createdAt"`
}

type NewCommentRequest struct {
	Body string `json:"body"`
}

func (r NewCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required.Error("body is required")),
	)
}
