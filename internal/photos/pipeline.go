package photos

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"ospreyBack/internal/config"
	"ospreyBack/internal/models"
	"ospreyBack/internal/services"
)

var ErrStorageNotConfigured = errors.New("storage credentials are missing: set S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY")

// Photo is an incoming file with everything collected about it.
type Photo struct {
	Path     string
	Tokens   []string
	TakenAt  time.Time
	GPS      *Coord
	Location *Location
	Hint     string
	Analysis Analysis
}

type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type AssetRecorder interface {
	Register(ctx context.Context, req services.ImageAssetRequest) (models.ImageAsset, error)
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, c Coord) (*Location, error)
}

// Pipeline turns the incoming directory into uploaded, indexed jobs.
type Pipeline struct {
	Cfg      config.PipelineConfig
	Geocoder ReverseGeocoder
	Uploader Uploader
	Assets   AssetRecorder
	Log      *zap.Logger
	// RandomHex returns n random bytes hex encoded.
	RandomHex func(n int) string

	mu        sync.Mutex
	lastKnown *Location
}

// Result summarizes one run.
type Result struct {
	Files int
	Jobs  []string
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Pipeline) randomHex(n int) string {
	if p.RandomHex != nil {
		return p.RandomHex(n)
	}
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (p *Pipeline) ensureDirs() error {
	for _, dir := range []string{p.Cfg.IncomingDir, p.Cfg.ProcessedDir, p.Cfg.JobsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ListIncoming returns the image files waiting in the incoming directory.
func (p *Pipeline) ListIncoming() ([]string, error) {
	entries, err := os.ReadDir(p.Cfg.IncomingDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.Contains(e.Name(), "processed") {
			continue
		}
		if !slices.Contains(p.Cfg.AllowedExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		files = append(files, filepath.Join(p.Cfg.IncomingDir, e.Name()))
	}
	return files, nil
}

// Run processes every waiting photo once. Runs are serialized.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	log := p.logger()

	if err := p.ensureDirs(); err != nil {
		return Result{}, err
	}
	if p.Uploader == nil {
		return Result{}, ErrStorageNotConfigured
	}
	files, err := p.ListIncoming()
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		log.Info("no new images found")
		return Result{}, nil
	}

	var collected []*Photo
	for _, f := range files {
		photo, err := p.Collect(ctx, f)
		if err != nil {
			log.Error("collect metadata failed", zap.String("file", f), zap.Error(err))
			continue
		}
		collected = append(collected, photo)
	}

	groups := Cluster(collected, p.Cfg.ClusterMiles, time.Duration(p.Cfg.ClusterHours*float64(time.Hour)))
	if len(groups) == 0 {
		log.Info("no jobs detected")
		return Result{Files: len(files)}, nil
	}

	res := Result{Files: len(files)}
	var index []IndexEntry
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entry, err := p.processJob(ctx, group)
		if err != nil {
			log.Error("process job group failed", zap.Int("photos", len(group)), zap.Error(err))
			continue
		}
		index = append(index, entry)
		res.Jobs = append(res.Jobs, entry.JobID)
	}
	if len(index) > 0 {
		if err := UpdateIndex(p.Cfg.JobsDir, index); err != nil {
			return res, fmt.Errorf("update index: %w", err)
		}
		log.Info("finished processing", zap.Int("jobs", len(index)))
	}
	return res, nil
}

// Collect reads the metadata and pixel analysis of one file.
func (p *Pipeline) Collect(ctx context.Context, path string) (*Photo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	img, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	tokens := fileTokens(path)
	meta := ReadExif(path)

	photo := &Photo{
		Path:     path,
		Tokens:   tokens,
		TakenAt:  meta.TakenAt,
		GPS:      meta.GPS,
		Hint:     KeywordHint(tokens, p.Cfg.BeforeKeywords, p.Cfg.AfterKeywords),
		Analysis: Analyze(img, tokens),
	}
	if photo.TakenAt.IsZero() {
		photo.TakenAt = info.ModTime()
	}
	if photo.GPS != nil && p.Geocoder != nil {
		loc, err := p.Geocoder.Reverse(ctx, *photo.GPS)
		if err != nil {
			p.logger().Warn("reverse geocoding failed", zap.String("file", path), zap.Error(err))
		}
		if loc != nil {
			photo.Location = loc
			p.lastKnown = loc
		}
	}
	if photo.Location == nil {
		photo.Location = p.lastKnown
	}
	return photo, nil
}

func (p *Pipeline) jobLocation(job []*Photo) Location {
	loc := Location{City: UnknownCity}
	if located := firstLocated(job); located != nil {
		loc = *located
	} else if p.lastKnown != nil {
		loc = *p.lastKnown
	}
	for _, photo := range job {
		if city := CityFromTokens(photo.Tokens, p.Cfg.Cities); city != "" {
			loc.City = city
			break
		}
	}
	if loc.Known() {
		known := loc
		p.lastKnown = &known
	}
	return loc
}

func firstLocated(job []*Photo) *Location {
	for _, photo := range job {
		if photo.Location != nil {
			return photo.Location
		}
	}
	return nil
}

func (p *Pipeline) jobService(job []*Photo) string {
	for _, photo := range job {
		if svc := ServiceFromTokens(photo.Tokens, p.Cfg.ServiceKeywords); svc != "" {
			return svc
		}
	}
	var descriptors []string
	var means [3]float64
	for _, photo := range job {
		for _, d := range photo.Analysis.Descriptors {
			if !slices.Contains(descriptors, d) {
				descriptors = append(descriptors, d)
			}
		}
		means = photo.Analysis.ChannelMeans
	}
	return DetectServiceType(descriptors, means)
}

func (p *Pipeline) processJob(ctx context.Context, job []*Photo) (IndexEntry, error) {
	start, end := job[0].TakenAt, job[0].TakenAt
	for _, photo := range job[1:] {
		if photo.TakenAt.Before(start) {
			start = photo.TakenAt
		}
		if photo.TakenAt.After(end) {
			end = photo.TakenAt
		}
	}
	date := start.UTC()
	jobID := fmt.Sprintf("job-%s-%s", date.Format("20060102"), p.randomHex(3))
	log := p.logger().With(zap.String("job_id", jobID))

	loc := p.jobLocation(job)
	service := p.jobService(job)
	types := AssignTypes(job)

	doc := JobDocument{
		JobID:       jobID,
		City:        firstNonEmpty(loc.City, UnknownCity),
		Region:      loc.Region,
		Zip:         loc.Zip,
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		ServiceType: service,
		StartTime:   start.UnixMilli(),
		EndTime:     end.UnixMilli(),
		Before:      []PhotoEntry{},
		After:       []PhotoEntry{},
		AllPhotos:   []PhotoEntry{},
	}

	for i, photo := range job {
		kind := types[i]
		descriptor := "exterior"
		if len(photo.Analysis.Descriptors) > 0 {
			descriptor = photo.Analysis.Descriptors[0]
		}
		base := SEOBaseName(service, loc.City, descriptor, kind, date, p.randomHex(2))
		alt := AltText(p.Cfg.ServiceTypeNames, kind, loc, service, descriptor)

		img, err := Open(photo.Path)
		if err != nil {
			return IndexEntry{}, fmt.Errorf("decode %s: %w", photo.Path, err)
		}
		for _, v := range p.Cfg.Variants {
			body, err := RenderVariant(img, v)
			if err != nil {
				return IndexEntry{}, fmt.Errorf("render %s %s: %w", photo.Path, v.Name, err)
			}
			filename := variantFilename(base, v.Name)
			publicURL, err := p.Uploader.Upload(ctx, jobID+"/"+filename, body, variantContentType)
			if err != nil {
				return IndexEntry{}, err
			}
			entry := PhotoEntry{Src: publicURL, Alt: alt, Size: v.Name, Type: kind}
			doc.AllPhotos = append(doc.AllPhotos, entry)
			if v.Name == "full" {
				if kind == TypeBefore {
					doc.Before = append(doc.Before, entry)
				} else {
					doc.After = append(doc.After, entry)
				}
			}
			p.recordAsset(ctx, log, jobID, filename, v.Name, kind, publicURL)
		}
		if err := archive(photo.Path, filepath.Join(p.Cfg.ProcessedDir, jobID)); err != nil {
			return IndexEntry{}, fmt.Errorf("archive %s: %w", photo.Path, err)
		}
	}

	if err := WriteJobDocument(p.Cfg.JobsDir, doc); err != nil {
		return IndexEntry{}, err
	}
	thumb := ""
	switch {
	case len(doc.After) > 0:
		thumb = doc.After[0].Src
	case len(doc.AllPhotos) > 0:
		thumb = doc.AllPhotos[0].Src
	}
	log.Info("job processed", zap.Int("photos", len(job)), zap.String("service", service), zap.String("city", doc.City))
	return IndexEntry{City: doc.City, Service: service, JobID: jobID, Date: date.Format("2006-01-02"), Thumb: thumb}, nil
}

// recordAsset registers an uploaded variant. Failures are logged only.
func (p *Pipeline) recordAsset(ctx context.Context, log *zap.Logger, jobID, filename, variant, kind, url string) {
	if p.Assets == nil {
		return
	}
	_, err := p.Assets.Register(ctx, services.ImageAssetRequest{
		JobID: jobID, Filename: filename, Variant: variant, Type: kind, URL: url,
	})
	if err != nil {
		log.Warn("image asset insert failed", zap.String("filename", filename), zap.Error(err))
	}
}

// archive moves src into dir, copying when a rename crosses devices.
func archive(src, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
