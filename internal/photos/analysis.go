package photos

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/exp/slices"
)

const (
	DescHeavyClog      = "heavy-clog"
	DescGranuleBuildUp = "granule-build-up"
	DescMoss           = "moss"
	DescOverflow       = "overflow"
	DescInstalledGuard = "installed-guard"
	DescCleanGutter    = "clean-gutter"
)

const (
	ServiceGutter   = "gutter-cleaning"
	ServiceRoof     = "roof-cleaning"
	ServicePressure = "pressure-washing"
	ServiceHoliday  = "holiday-lighting"
	ServiceUnknown  = "unknown"
)

var (
	overflowTokens = []string{"overflow", "spill", "runoff", "water", "pooling"}
	guardTokens    = []string{"guard", "screen", "mesh", "cover"}
	gutterDescs    = []string{DescHeavyClog, DescGranuleBuildUp, DescOverflow, DescCleanGutter, DescInstalledGuard}
)

// analysisEdge bounds the image used for pixel statistics.
const analysisEdge = 512

// Analysis holds the pixel statistics of one photo.
type Analysis struct {
	ChannelMeans  [3]float64
	ChannelStdevs [3]float64
	AvgMean       float64
	AvgStdev      float64
	Descriptors   []string
	DebrisScore   float64
}

func (a Analysis) Has(desc string) bool {
	return slices.Contains(a.Descriptors, desc)
}

// ChannelStats returns the per-channel mean and standard deviation of img.
// Fully transparent pixels count as black.
func ChannelStats(img image.Image) (means, stdevs [3]float64) {
	nrgba := imaging.Clone(img)
	var sum, sumSq [3]float64
	n := 0
	for i := 0; i+3 < len(nrgba.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(nrgba.Pix[i+c])
			sum[c] += v
			sumSq[c] += v * v
		}
		n++
	}
	if n == 0 {
		return means, stdevs
	}
	for c := 0; c < 3; c++ {
		means[c] = sum[c] / float64(n)
		variance := sumSq[c]/float64(n) - means[c]*means[c]
		stdevs[c] = math.Sqrt(math.Max(variance, 0))
	}
	return means, stdevs
}

// Analyze derives descriptors and the debris score from img and the filename
// tokens. Large images are downscaled first.
func Analyze(img image.Image, tokens []string) Analysis {
	b := img.Bounds()
	if b.Dx() > analysisEdge || b.Dy() > analysisEdge {
		img = imaging.Fit(img, analysisEdge, analysisEdge, imaging.Box)
	}
	means, stdevs := ChannelStats(img)
	a := Analysis{ChannelMeans: means, ChannelStdevs: stdevs}
	a.AvgMean = (means[0] + means[1] + means[2]) / 3
	a.AvgStdev = (stdevs[0] + stdevs[1] + stdevs[2]) / 3

	red, green, blue := means[0], means[1], means[2]
	warm := red-blue > 18 && green-blue > 12
	greenDominant := green-(red+blue)/2 > 15

	add := func(d string) {
		if !slices.Contains(a.Descriptors, d) {
			a.Descriptors = append(a.Descriptors, d)
		}
	}
	if a.AvgMean < 90 && a.AvgStdev > 35 {
		add(DescHeavyClog)
	}
	if warm && a.AvgMean >= 80 && a.AvgMean <= 175 {
		add(DescGranuleBuildUp)
	}
	if greenDominant {
		add(DescMoss)
	}
	if hasAny(tokens, overflowTokens) || (blue > red+12 && a.AvgStdev > 60) {
		add(DescOverflow)
	}
	if hasAny(tokens, guardTokens) {
		add(DescInstalledGuard)
	}
	if a.AvgMean > 155 && a.AvgStdev < 50 {
		add(DescCleanGutter)
	}

	a.DebrisScore = math.Max(0, 255-a.AvgMean) + a.AvgStdev
	if a.Has(DescHeavyClog) {
		a.DebrisScore += 25
	}
	if a.Has(DescMoss) {
		a.DebrisScore += 15
	}
	return a
}

// DetectServiceType infers the service from aggregated descriptors, falling
// back to the color balance of a representative photo.
func DetectServiceType(descriptors []string, means [3]float64) string {
	if slices.Contains(descriptors, DescMoss) {
		return ServiceRoof
	}
	for _, d := range descriptors {
		if slices.Contains(gutterDescs, d) {
			return ServiceGutter
		}
	}
	avg := (means[0] + means[1] + means[2]) / 3
	spread := math.Max(means[0], math.Max(means[1], means[2])) - math.Min(means[0], math.Min(means[1], means[2]))
	switch {
	case avg > 190 && spread < 25:
		return ServicePressure
	case spread > 80 && avg > 120:
		return ServiceHoliday
	default:
		return ServiceUnknown
	}
}
