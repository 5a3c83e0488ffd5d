package models

import "time"

type ImageAsset struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Filename  string    `json:"filename"`
	Variant   string    `json:"variant"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Bucket    string    `json:"bucket"`
	CreatedAt time.Time `json:"created_at"`
}
