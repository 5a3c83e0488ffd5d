package photos

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifData is the capture metadata the pipeline uses. Zero values mean the
// tag was absent or unreadable.
type ExifData struct {
	TakenAt time.Time
	GPS     *Coord
}

// ReadExif extracts the capture time and GPS position from path. Southern and
// western references come back as negative coordinates.
func ReadExif(path string) ExifData {
	f, err := os.Open(path)
	if err != nil {
		return ExifData{}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return ExifData{}
	}
	var out ExifData
	if t, err := x.DateTime(); err == nil {
		out.TakenAt = t
	}
	if lat, lng, err := x.LatLong(); err == nil && !(lat == 0 && lng == 0) {
		out.GPS = &Coord{Lat: lat, Lng: lng}
	}
	return out
}
