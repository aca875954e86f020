package state

// Point is a position in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style is captured when a stroke starts and never changes afterwards.
type Style struct {
	Color  string
	Width  float64
	Eraser bool
}

// Stroke is one continuous ink or eraser path.
type Stroke struct {
	ID     string
	Owner  string
	Points []Point
	Style  Style
}

// AddPoint appends a point to the stroke.
func (s *Stroke) AddPoint(p Point) {
	s.Points = append(s.Points, p)
}

// Clone returns a copy whose point slice is independent of s.
func (s *Stroke) Clone() *Stroke {
	c := *s
	c.Points = make([]Point, len(s.Points))
	copy(c.Points, s.Points)
	return &c
}
