package ui

import (
	"fmt"
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	type Case struct {
		g      Geometry
		w, h   int
		expect image.Rectangle
	}
	cases := []Case{
		{Geometry{0, 0, 1, 1}, 800, 600, image.Rect(0, 0, 800, 600)},
		{Geometry{0.5, 0.25, 0.5, 0.5}, 800, 600, image.Rect(400, 150, 800, 450)},
		{Geometry{0.333, 0, 0.333, 0.1}, 100, 10, image.Rect(33, 0, 66, 1)},
		// no clamping
		{Geometry{0.9, 0.9, 0.5, 0.5}, 100, 100, image.Rect(90, 90, 140, 140)},
		{Geometry{0, 0, 0, 0}, 100, 100, image.Rect(0, 0, 0, 0)},
	}
	for i, c := range cases {
		c := c
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, c.expect, Resolve(c.g, c.w, c.h))
		})
	}
}

func TestResolveWithinCanvas(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(1))
	canvas := image.Rect(0, 0, 1024, 768)
	for i := 0; i < 1000; i++ {
		l, tp := rnd.Float64(), rnd.Float64()
		g := Geometry{Left: l, Top: tp, Width: rnd.Float64() * (1 - l), Height: rnd.Float64() * (1 - tp)}
		r := Resolve(g, canvas.Dx(), canvas.Dy())
		assert.True(t, r.In(canvas) || r.Empty(), "geometry=%#v bounds=%s", g, r)
	}
}
