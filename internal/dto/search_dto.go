package dto

import "time"

type SearchResultResponse struct {
	Kind      string    `json:"kind"`
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Snippet   string    `json:"snippet"`
	MatchedIn string    `json:"matched_in"`
	Timestamp time.Time `json:"timestamp"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []*SearchResultResponse `json:"results"`
}
