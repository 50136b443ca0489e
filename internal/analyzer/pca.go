package analyzer

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects points onto their first two principal axes. It is used for
// display only and never feeds back into clustering.
type PCA struct{}

// Project returns the coordinates of each centered point on the principal
// axes. Axes the data cannot support (a single point, or all points on a
// line) yield zeros.
func (p PCA) Project(points []Point) ([]Point, error) {
	proj, _, err := p.project(points)
	return proj, err
}

// ExplainedVariance returns the variance along each principal axis.
func (p PCA) ExplainedVariance(points []Point) ([]float64, error) {
	_, vars, err := p.project(points)
	return vars, err
}

func (PCA) project(points []Point) ([]Point, []float64, error) {
	n := len(points)
	out := make([]Point, n)
	if n < 2 {
		return out, make([]float64, 2), nil
	}

	data := make([]float64, 0, n*2)
	for _, pt := range points {
		data = append(data, pt[0], pt[1])
	}
	x := mat.NewDense(n, 2, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, nil, errors.New("pca: decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	orientAxes(&vecs)

	// Center before projecting.
	means := [2]float64{
		stat.Mean(mat.Col(nil, 0, x), nil),
		stat.Mean(mat.Col(nil, 1, x), nil),
	}
	centered := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		centered.Set(i, 0, x.At(i, 0)-means[0])
		centered.Set(i, 1, x.At(i, 1)-means[1])
	}

	var proj mat.Dense
	proj.Mul(centered, &vecs)

	_, cols := proj.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < cols && j < 2; j++ {
			out[i][j] = proj.At(i, j)
		}
	}

	explained := make([]float64, 2)
	copy(explained, vars)
	return out, explained, nil
}

// orientAxes flips each axis so that its largest loading is positive; SVD
// leaves the sign of each vector arbitrary.
func orientAxes(vecs *mat.Dense) {
	rows, cols := vecs.Dims()
	for j := 0; j < cols; j++ {
		var largest float64
		for i := 0; i < rows; i++ {
			if v := vecs.At(i, j); math.Abs(v) > math.Abs(largest) {
				largest = v
			}
		}
		if largest < 0 {
			for i := 0; i < rows; i++ {
				vecs.Set(i, j, -vecs.At(i, j))
			}
		}
	}
}
