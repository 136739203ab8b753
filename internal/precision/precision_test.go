package precision

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

func group(points ...[2]float64) *shotgroup.Group {
	samples := make([]shotgroup.Sample, len(points))
	for i, p := range points {
		samples[i] = shotgroup.Sample{X: p[0], Y: p[1], R: 1}
	}
	return shotgroup.New(samples)
}

func randomGroup(rng *rand.Rand) *shotgroup.Group {
	n := MinShots + rng.Intn(12)
	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{rng.NormFloat64() * 40, rng.NormFloat64() * 40}
	}
	return group(points...)
}

func TestAnalyze_Triangle(t *testing.T) {
	g := group([2]float64{0, 0}, [2]float64{10, 0}, [2]float64{5, 10})

	r, err := Analyze(g, Identity, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Shots)
	assert.InDelta(t, 5.0, r.Center.X, 1e-9)
	assert.InDelta(t, 10.0/3, r.Center.Y, 1e-9)

	wantRadius := (2*math.Hypot(5, 10.0/3) + 20.0/3) / 3
	assert.InDelta(t, wantRadius, r.MeanRadius, 1e-9)
	assert.InDelta(t, 6.2284, r.MeanRadius, 1e-4)
	assert.InDelta(t, 2*wantRadius, r.GroupSize.Inches, 1e-9)
	assert.InDelta(t, 2*wantRadius/1.047, r.GroupSize.MOA, 1e-9)

	assert.InDelta(t, math.Hypot(5, 10), r.ExtremeSpread.Inches, 1e-9)
	assert.InDelta(t, 11.1803, r.ExtremeSpread.Inches, 1e-4)
	assert.InDelta(t, 10.68, r.ExtremeSpread.MOA, 1e-2)

	assert.InDelta(t, 20.0/3, r.Horizontal.Inches, 1e-9)
	assert.InDelta(t, 80.0/9, r.Vertical.Inches, 1e-9)
	assert.InDelta(t, 80.0/9/1.047, r.Vertical.MOA, 1e-9)

	assert.Equal(t, r.Circle, Circle{X: r.Center.X, Y: r.Center.Y, R: r.MeanRadius})
}

func TestAnalyze_UsesConverter(t *testing.T) {
	g := group([2]float64{0, 0}, [2]float64{96, 0}, [2]float64{48, 96})
	perInch := func(v float64) float64 { return v / 96 }

	r, err := Analyze(g, perInch, 50)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, r.CircleInches.X, 1e-9)
	assert.InDelta(t, r.MeanRadius/96, r.CircleInches.R, 1e-9)
	assert.InDelta(t, math.Hypot(48, 96)/96, r.ExtremeSpread.Inches, 1e-9)
	assert.InDelta(t, r.ExtremeSpread.Inches/(1.047*0.5), r.ExtremeSpread.MOA, 1e-9)
	assert.Equal(t, 50.0, r.DistanceYards)
}

func TestAnalyze_Preconditions(t *testing.T) {
	three := group([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1})
	two := group([2]float64{0, 0}, [2]float64{1, 0})

	tests := []struct {
		name    string
		g       *shotgroup.Group
		conv    Converter
		yards   float64
		wantErr error
	}{
		{"ok", three, Identity, 100, nil},
		{"two shots", two, Identity, 100, ErrTooFewShots},
		{"empty", shotgroup.New(nil), Identity, 100, ErrTooFewShots},
		{"nil group", nil, Identity, 100, ErrTooFewShots},
		{"zero distance", three, Identity, 0, ErrInvalidDistance},
		{"negative distance", three, Identity, -25, ErrInvalidDistance},
		{"nan distance", three, Identity, math.NaN(), ErrInvalidDistance},
		{"inf distance", three, Identity, math.Inf(1), ErrInvalidDistance},
		{"nil converter", three, nil, 100, ErrNoConverter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Analyze(tt.g, tt.conv, tt.yards)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, r)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Nil(t, r)
		})
	}
}

func TestCheckGroup_Message(t *testing.T) {
	err := CheckGroup(group([2]float64{0, 0}, [2]float64{1, 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select more than 2 shots")
}

func TestMeanPrecisionRadius_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, MeanPrecisionRadius(randomGroup(rng)), 0.0)
	}
}

func TestMeanPrecisionRadius_ZeroOnlyWhenCoincident(t *testing.T) {
	same := group([2]float64{3, 4}, [2]float64{3, 4}, [2]float64{3, 4})
	assert.Equal(t, 0.0, MeanPrecisionRadius(same))

	apart := group([2]float64{3, 4}, [2]float64{3, 4}, [2]float64{3, 4.5})
	assert.Greater(t, MeanPrecisionRadius(apart), 0.0)
}

func TestExtremeSpread_IsMaxPairwise(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	double := func(v float64) float64 { return 2 * v }

	for i := 0; i < 50; i++ {
		g := randomGroup(rng)
		samples := g.Samples()

		var want float64
		achieved := false
		got := ExtremeSpread(g, double, 100)
		for _, a := range samples {
			for _, b := range samples {
				d := a.Point().Dist(b.Point())
				want = math.Max(want, d)
				assert.LessOrEqual(t, double(d), got.Inches+1e-9)
				if math.Abs(double(d)-got.Inches) < 1e-9 {
					achieved = true
				}
			}
		}
		assert.InDelta(t, double(want), got.Inches, 1e-9)
		assert.True(t, achieved)
	}
}

func TestMOA(t *testing.T) {
	assert.InDelta(t, 1.0, MOA(1.047, 100), 1e-12)
	assert.InDelta(t, 5/1.047, MOA(5, 100), 1e-12)
	assert.InDelta(t, 5/2.094, MOA(5, 200), 1e-12)
	assert.InDelta(t, 2*MOA(3.3, 300), MOA(6.6, 300), 1e-12)
	assert.InDelta(t, MOA(1, 100)+MOA(2, 100), MOA(3, 100), 1e-12)
}

func TestCircleInches(t *testing.T) {
	got := CircleInches(Circle{X: 96, Y: 192, R: 48}, func(v float64) float64 { return v / 96 })
	assert.Equal(t, Circle{X: 1, Y: 2, R: 0.5}, got)
}

func TestSummary(t *testing.T) {
	g := group([2]float64{0, 0}, [2]float64{10, 0}, [2]float64{5, 10})
	r, err := Analyze(g, Identity, 100)
	require.NoError(t, err)

	lines := strings.Split(Summary(r), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "3 shots", lines[0])
	assert.Equal(t, "average precision = 12.46 inches", lines[1])
	assert.Equal(t, "moa at 100 yds = 11.90", lines[2])
	assert.Equal(t, "horizontal = 6.67 inches (6.37 moa)", lines[3])
	assert.Equal(t, "vertical = 8.89 inches (8.49 moa)", lines[4])
	assert.Equal(t, "extreme spread = 11.18 inches (10.68 moa)", lines[5])
}
