package core

// MarkerID is the host identity of one marker renderer instance.
type MarkerID uint64

// MarkerSize is the size request forwarded to a marker renderer.
type MarkerSize struct {
	Size   float64
	Offset float64
}

// Matrix is a column-major 4x4 transform handed to the marker renderer.
type Matrix [16]float64

// TranslationMatrix returns an identity transform moved to p.
func TranslationMatrix(p Vec3) Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		p.X, p.Y, p.Z, 1,
	}
}

// Translation returns the position part of the transform.
func (m Matrix) Translation() Vec3 {
	return Vec3{X: m[12], Y: m[13], Z: m[14]}
}
