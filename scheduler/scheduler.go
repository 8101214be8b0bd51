// Package scheduler triggers periodic work from host-driven ticks. Nothing
// here owns a timer or a goroutine: the simulation loop calls Tick with its
// current time and the schedule reports whether the work is due.
package scheduler

// Every fires on every Nth tick.
type Every struct {
	n     int
	count int
}

// NewEvery returns a schedule firing every n ticks. n below 1 fires on
// every tick.
func NewEvery(n int) *Every {
	if n < 1 {
		n = 1
	}
	return &Every{n: n}
}

// Tick advances the schedule and reports whether it fired. The schedule
// re-arms itself after firing.
func (e *Every) Tick() bool {
	e.count++
	if e.count < e.n {
		return false
	}
	e.count = 0
	return true
}

// N returns the tick period.
func (e *Every) N() int { return e.n }

// Interval fires once at least dt seconds of simulation time have passed
// since it last fired.
type Interval struct {
	dt      float64
	next    float64
	started bool
}

// NewInterval returns a schedule firing every dt seconds. dt of zero or
// below fires on every tick.
func NewInterval(dt float64) *Interval {
	return &Interval{dt: dt}
}

// Tick reports whether the schedule fires at time t. The first tick always
// fires and anchors the schedule.
func (i *Interval) Tick(t float64) bool {
	if !i.started {
		i.started = true
		i.next = t + i.dt
		return true
	}
	if t < i.next {
		return false
	}
	// Skip missed periods instead of firing a burst.
	for i.next <= t {
		if i.dt <= 0 {
			i.next = t
			break
		}
		i.next += i.dt
	}
	return true
}

// Period returns dt.
func (i *Interval) Period() float64 { return i.dt }

// Reset makes the next tick fire.
func (i *Interval) Reset() { i.started = false }
