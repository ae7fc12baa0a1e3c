package model

import "time"

// LyricsContent is the displayable payload of a lyrics document. All
// fields are opaque strings; presentation is a client concern.
type LyricsContent struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Lyrics     string `json:"lyrics"`
	FontSize   string `json:"fontSize"`
	TextColor  string `json:"textColor"`
	TextFormat string `json:"textFormat"`
	Theme      string `json:"theme"`
}

// LyricsDocument is an owned, mutable lyrics record.
type LyricsDocument struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Content   LyricsContent `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
