package main

import (
	"fmt"
	"math"
)

// A vec3 is an {x, y, z} coordinate or direction in the turtle's relative
// frame. x is left/right, y is up/down and z is forward/back as seen from
// the start pose.
type vec3 [3]int

var (
	vec3Zero    = vec3{0, 0, 0}
	vec3Up      = vec3{0, 1, 0}
	vec3Down    = vec3{0, -1, 0}
	vec3Forward = vec3{0, 0, 1}
)

func (v vec3) String() string {
	return fmt.Sprintf("(%d %d %d)", v[0], v[1], v[2])
}

func vec3Equal(a, b vec3) bool {
	return a == b
}

func vec3Add(a, b vec3) vec3 {
	var out vec3
	for i, c := range a {
		out[i] = c + b[i]
	}
	return out
}

func vec3Sub(a, b vec3) vec3 {
	var out vec3
	for i, c := range a {
		out[i] = c - b[i]
	}
	return out
}

func vec3Mul(a vec3, m int) vec3 {
	var out vec3
	for i, c := range a {
		out[i] = c * m
	}
	return out
}

// Divides every component by m, rounding to the nearest integer.
func vec3Div(a vec3, m int) vec3 {
	var out vec3
	for i, c := range a {
		out[i] = int(math.Round(float64(c) / float64(m)))
	}
	return out
}

func vec3Neg(a vec3) vec3 {
	return vec3{-a[0], -a[1], -a[2]}
}

func vec3Dot(a, b vec3) int {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vec3Cross(a, b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Euclidean length.
func vec3Len(a vec3) float64 {
	return math.Sqrt(float64(vec3Dot(a, a)))
}

// Returns the vector scaled to length 1, rounded to the integer grid. Only
// exact for axis aligned vectors, which is all the turtle ever faces.
func vec3Normalize(a vec3) vec3 {
	l := vec3Len(a)
	if l == 0 {
		return vec3Zero
	}
	return vec3Round([3]float64{
		float64(a[0]) / l,
		float64(a[1]) / l,
		float64(a[2]) / l,
	})
}

func vec3Round(f [3]float64) vec3 {
	return vec3{
		int(math.Round(f[0])),
		int(math.Round(f[1])),
		int(math.Round(f[2])),
	}
}

// Calculates L1 (manhattan) distance between two vectors.
func vec3L1Dist(a, b vec3) int {
	dist := 0
	for i, c := range a {
		d := c - b[i]
		if d < 0 {
			d = -d
		}
		dist += d
	}
	return dist
}

const (
	rotLeft  = 1
	rotRight = -1
)

// 90 degree rotation of a horizontal direction around the y axis.
// rotate is rotLeft or rotRight. The sin term is the only non-zero one for
// quarter turns, so this is just an axis swap and a sign.
func rotateDir(dir vec3, rotate int) vec3 {
	switch {
	case dir[0] != 0:
		return vec3{0, 0, -dir[0] * rotate}
	case dir[2] != 0:
		return vec3{dir[2] * rotate, 0, 0}
	}
	return dir
}
