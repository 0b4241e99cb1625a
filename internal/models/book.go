package models

import "time"

// DefaultCoverImage is assigned to books without an uploaded cover.
const DefaultCoverImage = "default-coverImage.jpg"

type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	ISBN          string     `json:"isbn,omitempty"`
	CoverImage    string     `json:"coverImage"`
	Description   string     `json:"description,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Genres        []string   `json:"genres"`
	AddedBy       int64      `json:"addedBy"`
	AverageRating float64    `json:"averageRating"`
	TotalReviews  int        `json:"totalReviews"`
	CreatedAt     time.Time  `json:"createdAt"`
}
