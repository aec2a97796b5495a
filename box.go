package main

// Box is a rectangle in layout coordinates. Pages are stacked vertically, so
// page p occupies y in [p*PageHeight, (p+1)*PageHeight).
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type point struct {
	X, Y float64
}

func (b Box) Right() float64  { return b.X + b.Width }
func (b Box) Bottom() float64 { return b.Y + b.Height }

func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.Right() && y >= b.Y && y <= b.Bottom()
}

func (b Box) Intersects(o Box) bool {
	return b.X <= o.Right() && o.X <= b.Right() && b.Y <= o.Bottom() && o.Y <= b.Bottom()
}

func (b Box) Offset(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

func (b Box) Union(o Box) Box {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	x := min(b.X, o.X)
	y := min(b.Y, o.Y)
	return Box{X: x, Y: y, Width: max(b.Right(), o.Right()) - x, Height: max(b.Bottom(), o.Bottom()) - y}
}

func (b Box) IsZero() bool {
	return b.Width == 0 && b.Height == 0 && b.X == 0 && b.Y == 0
}

func (b Box) Center() point {
	return point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// boxFromPoints normalizes a drag rectangle so width and height are positive.
func boxFromPoints(a, b point) Box {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return Box{X: x, Y: y, Width: max(a.X, b.X) - x, Height: max(a.Y, b.Y) - y}
}
