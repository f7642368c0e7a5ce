package domain

import "time"

// News is a record of the news endpoint. Content is CMS-authored HTML.
type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
