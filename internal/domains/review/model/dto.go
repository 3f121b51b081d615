package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type NewReviewRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList"`
}

func (r NewReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Body, validation.Required.Error("body is required")),
		validation.Field(&r.TagList, validation.Each(validation.Required.Error("tags must not be empty"))),
	)
}

// UpdateReviewRequest carries partial updates; nil fields keep their
// current values. A non-nil TagList replaces the whole tag set.
type UpdateReviewRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Body        *string  `json:"body"`
	TagList     []string `json:"tagList"`
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 255)),
		validation.Field(&r.TagList, validation.Each(validation.Required.Error("tags must not be empty"))),
	)
}
