package model

import "time"

// Review is a user's rating and comment on a theme. Reviews are removed
// together with either the user or the theme they belong to.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ThemeID   string    `json:"themeId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewAuthor is the reviewer projection shown next to a review.
type ReviewAuthor struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ReviewWithAuthor is a review joined with its author's name and avatar.
type ReviewWithAuthor struct {
	Review
	User ReviewAuthor `json:"user"`
}
