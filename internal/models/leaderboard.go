package models

type LeaderboardItem struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Level    int     `json:"level"`
	Rank     int     `json:"rank"`
}
