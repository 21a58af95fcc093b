package trajectory

import (
	"math"
)

// profileEpsilon is the tolerance, in seconds and meters, below which profile phases are dropped.
const profileEpsilon = 1e-9

// phase is a constant acceleration piece of a Profile.
type phase struct {
	start    float64 // seconds since the start of the profile
	duration float64
	pos      float64 // distance covered when the phase begins
	vel      float64 // speed when the phase begins
	acc      float64
}

func (p phase) at(t float64) (float64, float64) {
	return p.pos + p.vel*t + 0.5*p.acc*t*t, p.vel + p.acc*t
}

// Profile is a one dimensional motion along a line, from distance zero at StartSpeed to Distance
// at EndSpeed, built from at most three constant acceleration phases: a ramp toward the peak
// speed, a cruise at the speed limit, and a ramp to the end speed.
type Profile struct {
	Distance   float64
	StartSpeed float64
	EndSpeed   float64
	// PeakSpeed is the highest speed reached between the two ramps.
	PeakSpeed float64
	// Triangular is set when the profile never reaches the speed limit.
	Triangular bool
	// Overdriven is set when the end speed cannot be reached within Distance at the acceleration
	// limit. The profile is then a single ramp at whatever acceleration joins both endpoints.
	Overdriven bool

	phases   []phase
	duration float64
}

// NewProfile solves the profile covering distance from startSpeed to endSpeed. startSpeed is
// measured along the direction of travel and may be negative. endSpeed is clamped to
// [0, maxSpeed]. maxSpeed and maxAccel must be positive.
func NewProfile(distance, startSpeed, endSpeed, maxSpeed, maxAccel float64) Profile {
	endSpeed = math.Max(0, math.Min(endSpeed, maxSpeed))
	p := Profile{Distance: distance, StartSpeed: startSpeed, EndSpeed: endSpeed}
	if distance <= profileEpsilon {
		p.Distance = 0
		p.StartSpeed = 0
		p.EndSpeed = 0
		return p
	}

	v0, vf, a, d := startSpeed, endSpeed, maxAccel, distance
	speedUp := (vf*vf - v0*v0) / 2
	slowDown := -speedUp
	if v0 < 0 {
		// Moving away from the goal. Reversing costs no forward distance.
		slowDown = 0
	}
	if speedUp > a*d || slowDown > a*d {
		// Single ramp with the acceleration that joins both endpoints.
		acc := (vf*vf - v0*v0) / (2 * d)
		p.Overdriven = true
		p.PeakSpeed = math.Max(v0, vf)
		p.addPhase(2*d/(v0+vf), v0, acc)
		return p
	}

	peak := math.Sqrt(a*d + (v0*v0+vf*vf)/2)
	if peak <= maxSpeed {
		p.Triangular = true
		p.PeakSpeed = peak
		p.addPhase((peak-v0)/a, v0, a)
		p.addPhase((peak-vf)/a, peak, -a)
		return p
	}

	p.PeakSpeed = maxSpeed
	rampAcc := a
	if v0 > maxSpeed {
		rampAcc = -a
	}
	rampUp := (maxSpeed*maxSpeed - v0*v0) / (2 * rampAcc)
	rampDown := (maxSpeed*maxSpeed - vf*vf) / (2 * a)
	cruise := math.Max(0, d-rampUp-rampDown)
	p.addPhase((maxSpeed-v0)/rampAcc, v0, rampAcc)
	p.addPhase(cruise/maxSpeed, maxSpeed, 0)
	p.addPhase((maxSpeed-vf)/a, maxSpeed, -a)
	return p
}

func (p *Profile) addPhase(duration, vel, acc float64) {
	if duration <= profileEpsilon {
		return
	}
	var pos float64
	if n := len(p.phases); n > 0 {
		pos, _ = p.phases[n-1].at(p.phases[n-1].duration)
	}
	p.phases = append(p.phases, phase{start: p.duration, duration: duration, pos: pos, vel: vel, acc: acc})
	p.duration += duration
}

// Duration returns the total time of the profile in seconds.
func (p Profile) Duration() float64 {
	return p.duration
}

// At returns the distance covered and the speed t seconds after the start. Before zero it
// returns the start, after Duration it returns exactly Distance and EndSpeed.
func (p Profile) At(t float64) (float64, float64) {
	if len(p.phases) == 0 {
		return p.Distance, p.EndSpeed
	}
	if t <= 0 {
		return 0, p.StartSpeed
	}
	if t >= p.duration-profileEpsilon {
		return p.Distance, p.EndSpeed
	}
	for _, ph := range p.phases {
		if t < ph.start+ph.duration {
			return ph.at(t - ph.start)
		}
	}
	return p.Distance, p.EndSpeed
}
