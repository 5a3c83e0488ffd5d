package photos

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const indexFile = "index.json"

// PhotoEntry is one uploaded variant.
type PhotoEntry struct {
	Src  string `json:"src"`
	Alt  string `json:"alt"`
	Size string `json:"size"`
	Type string `json:"type"`
}

// JobDocument is written to <jobs_dir>/<job_id>.json. Times are Unix
// milliseconds.
type JobDocument struct {
	JobID       string       `json:"job_id"`
	City        string       `json:"city"`
	Region      string       `json:"region"`
	Zip         string       `json:"zip"`
	Lat         *float64     `json:"lat"`
	Lng         *float64     `json:"lng"`
	ServiceType string       `json:"service_type"`
	StartTime   int64        `json:"start_time"`
	EndTime     int64        `json:"end_time"`
	Before      []PhotoEntry `json:"before"`
	After       []PhotoEntry `json:"after"`
	AllPhotos   []PhotoEntry `json:"all_photos"`
}

// IndexEntry is one row of index.json.
type IndexEntry struct {
	City    string `json:"city"`
	Service string `json:"service"`
	JobID   string `json:"jobID"`
	Date    string `json:"date"`
	Thumb   string `json:"thumb"`
}

// legacyIndexEntry accepts rows written with a job_id key.
type legacyIndexEntry struct {
	IndexEntry
	LegacyJobID string `json:"job_id"`
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func WriteJobDocument(dir string, doc JobDocument) error {
	return writeJSONFile(filepath.Join(dir, doc.JobID+".json"), doc)
}

func ReadIndex(dir string) ([]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var raw []legacyIndexEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", indexFile, err)
	}
	out := make([]IndexEntry, len(raw))
	for i, r := range raw {
		out[i] = r.IndexEntry
		if out[i].JobID == "" {
			out[i].JobID = r.LegacyJobID
		}
	}
	return out, nil
}

// UpdateIndex upserts entries by job id and rewrites index.json newest first.
func UpdateIndex(dir string, entries []IndexEntry) error {
	current, err := ReadIndex(dir)
	if err != nil {
		return err
	}
	pos := make(map[string]int, len(current))
	for i, e := range current {
		pos[e.JobID] = i
	}
	for _, e := range entries {
		if i, ok := pos[e.JobID]; ok {
			current[i] = e
			continue
		}
		pos[e.JobID] = len(current)
		current = append(current, e)
	}
	sort.SliceStable(current, func(i, j int) bool { return current[i].Date > current[j].Date })
	return writeJSONFile(filepath.Join(dir, indexFile), current)
}
