package models

import "time"

type Review struct {
	ID         int64     `json:"id"`
	Author     int64     `json:"author"`
	Book       int64     `json:"book"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review,omitempty"`
	LikesCount int       `json:"likesCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
