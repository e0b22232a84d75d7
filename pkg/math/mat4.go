// Package math provides the row-major matrix type transforms are authored in.
//
// Matrices are written the way they read on paper: M[row][col], translation
// in the last column. The GPU consumes column-major data, so every upload goes
// through ColumnMajor, which is the one place the transpose happens.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix in row-major order.
type Mat4 [4][4]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[0][3] = x
	m[1][3] = y
	m[2][3] = z
	return m
}

// Rotate returns a rotation of angle radians about axis. A zero axis yields
// the identity.
func Rotate(axis mgl32.Vec3, angle float64) Mat4 {
	if axis.Len() == 0 {
		return Identity()
	}
	a := axis.Normalize()
	x, y, z := float64(a[0]), float64(a[1]), float64(a[2])
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c

	return Mat4{
		{float32(t*x*x + c), float32(t*x*y - s*z), float32(t*x*z + s*y), 0},
		{float32(t*x*y + s*z), float32(t*y*y + c), float32(t*y*z - s*x), 0},
		{float32(t*x*z - s*y), float32(t*y*z + s*x), float32(t*z*z + c), 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			result[row][col] = m[row][0]*other[0][col] +
				m[row][1]*other[1][col] +
				m[row][2]*other[2][col] +
				m[row][3]*other[3][col]
		}
	}
	return result
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			t[col][row] = m[row][col]
		}
	}
	return t
}

// ColumnMajor converts m to the column-major layout OpenGL expects. The
// result can be uploaded with transpose=false.
func (m Mat4) ColumnMajor() mgl32.Mat4 {
	var out mgl32.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col*4+row] = m[row][col]
		}
	}
	return out
}
