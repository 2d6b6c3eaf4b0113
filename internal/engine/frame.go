package engine

// Frame is a lightweight positional snapshot for render surfaces and
// the websocket stream.
type Frame struct {
	Time   float64     `json:"time"`
	Step   int         `json:"step"`
	Dt     float64     `json:"dt"`
	Done   bool        `json:"done"`
	Bodies []BodyFrame `json:"bodies"`
}

// BodyFrame carries one body's current positions and speeds.
type BodyFrame struct {
	Name  string       `json:"name"`
	Rigid bool         `json:"rigid"`
	Pos   [][3]float64 `json:"pos"`
	Speed []float64    `json:"speed"`
}

// Frame copies the current particle state. Safe to hand to another
// goroutine; the engine keeps nothing of it.
func (e *Engine) Frame() Frame {
	f := Frame{
		Time:   e.time.Now,
		Step:   e.time.Step,
		Dt:     e.dt,
		Done:   e.Done(),
		Bodies: make([]BodyFrame, len(e.bodies)),
	}
	for k, b := range e.bodies {
		bf := BodyFrame{
			Name:  b.Name,
			Rigid: b.Rigid,
			Pos:   make([][3]float64, b.Len()),
			Speed: make([]float64, b.Len()),
		}
		for i := range b.Pos {
			bf.Pos[i] = [3]float64{b.Pos[i].X(), b.Pos[i].Y(), b.Pos[i].Z()}
			bf.Speed[i] = b.Vel[i].Len()
		}
		f.Bodies[k] = bf
	}
	return f
}
