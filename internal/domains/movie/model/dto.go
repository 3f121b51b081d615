package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type NewMovieRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Body         string   `json:"body"`
	YearReleased string   `json:"yearReleased"`
	Languages    []string `json:"languages"`
	ActorList    []string `json:"actorList"`
}

func (r NewMovieRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Body, validation.Required.Error("body is required")),
		validation.Field(&r.YearReleased,
			validation.Required.Error("yearReleased is required"),
			validation.Length(4, 4).Error("yearReleased must be a four digit year"),
		),
		validation.Field(&r.ActorList, validation.Each(validation.Required.Error("actor names must not be empty"))),
	)
}
