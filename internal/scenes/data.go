package scenes

var (
	green     = [4]float32{0.75, 0.75, 1.0, 1.0}
	blue      = [4]float32{0.0, 0.5, 0.0, 1.0}
	red       = [4]float32{1.0, 0.0, 0.0, 1.0}
	grey      = [4]float32{0.8, 0.8, 0.8, 1.0}
	brown     = [4]float32{0.5, 0.5, 0.0, 1.0}
	pureGreen = [4]float32{0.0, 1.0, 0.0, 1.0}
	pureBlue  = [4]float32{0.0, 0.0, 1.0, 1.0}
	cyan      = [4]float32{0.0, 1.0, 1.0, 1.0}
)

// run is one colour repeated for n consecutive vertices.
type run struct {
	color [4]float32
	n     int
}

func colors(runs ...run) []float32 {
	var out []float32
	for _, r := range runs {
		for i := 0; i < r.n; i++ {
			out = append(out, r.color[:]...)
		}
	}
	return out
}

// prismPositions is a rectangular prism seen end-on, one face per six
// vertices, homogeneous w included.
var prismPositions = []float32{
	0.25, 0.25, -1.25, 1.0,
	0.25, -0.25, -1.25, 1.0,
	-0.25, 0.25, -1.25, 1.0,

	0.25, -0.25, -1.25, 1.0,
	-0.25, -0.25, -1.25, 1.0,
	-0.25, 0.25, -1.25, 1.0,

	0.25, 0.25, -2.75, 1.0,
	-0.25, 0.25, -2.75, 1.0,
	0.25, -0.25, -2.75, 1.0,

	0.25, -0.25, -2.75, 1.0,
	-0.25, 0.25, -2.75, 1.0,
	-0.25, -0.25, -2.75, 1.0,

	-0.25, 0.25, -1.25, 1.0,
	-0.25, -0.25, -1.25, 1.0,
	-0.25, -0.25, -2.75, 1.0,

	-0.25, 0.25, -1.25, 1.0,
	-0.25, -0.25, -2.75, 1.0,
	-0.25, 0.25, -2.75, 1.0,

	0.25, 0.25, -1.25, 1.0,
	0.25, -0.25, -2.75, 1.0,
	0.25, -0.25, -1.25, 1.0,

	0.25, 0.25, -1.25, 1.0,
	0.25, 0.25, -2.75, 1.0,
	0.25, -0.25, -2.75, 1.0,

	0.25, 0.25, -2.75, 1.0,
	0.25, 0.25, -1.25, 1.0,
	-0.25, 0.25, -1.25, 1.0,

	0.25, 0.25, -2.75, 1.0,
	-0.25, 0.25, -1.25, 1.0,
	-0.25, 0.25, -2.75, 1.0,

	0.25, -0.25, -2.75, 1.0,
	-0.25, -0.25, -1.25, 1.0,
	0.25, -0.25, -1.25, 1.0,

	0.25, -0.25, -2.75, 1.0,
	-0.25, -0.25, -2.75, 1.0,
	-0.25, -0.25, -1.25, 1.0,
}

const (
	rightExtent  = 0.8
	leftExtent   = -rightExtent
	topExtent    = 0.20
	middleExtent = 0.0
	bottomExtent = -topExtent
	frontExtent  = -1.25
	rearExtent   = -1.75
)

// wedgePositions is one wedge of the depth-buffer scene: a roof, a floor and
// the three side faces.
var wedgePositions = []float32{
	leftExtent, topExtent, rearExtent,
	leftExtent, middleExtent, frontExtent,
	rightExtent, middleExtent, frontExtent,
	rightExtent, topExtent, rearExtent,

	leftExtent, bottomExtent, rearExtent,
	leftExtent, middleExtent, frontExtent,
	rightExtent, middleExtent, frontExtent,
	rightExtent, bottomExtent, rearExtent,

	leftExtent, topExtent, rearExtent,
	leftExtent, middleExtent, frontExtent,
	leftExtent, bottomExtent, rearExtent,

	rightExtent, topExtent, rearExtent,
	rightExtent, middleExtent, frontExtent,
	rightExtent, bottomExtent, rearExtent,

	leftExtent, bottomExtent, rearExtent,
	leftExtent, topExtent, rearExtent,
	rightExtent, topExtent, rearExtent,
	rightExtent, bottomExtent, rearExtent,
}
