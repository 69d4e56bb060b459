package tetris

// SequenceRandomizer hands out Shapes in order and starts over at the end.
type SequenceRandomizer struct {
	Shapes []Shape
	i      int
}

func (s *SequenceRandomizer) Next() Shape {
	shape := s.Shapes[s.i%len(s.Shapes)]
	s.i++
	return shape
}

// NewTestGame creates a game with the default config where every piece has the given
// shape and the listed cells are already locked.
func NewTestGame(shape Shape, locked ...Point) *Game {
	g, err := NewConfigurableGame(DefaultConfig(), nil, &SequenceRandomizer{Shapes: []Shape{shape}})
	if err != nil {
		panic(err)
	}
	for _, p := range locked {
		g.grid.Set(p, true)
	}
	return g
}
