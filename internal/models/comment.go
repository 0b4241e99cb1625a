package models

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    int64     `json:"author"`
	Review    int64     `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}
