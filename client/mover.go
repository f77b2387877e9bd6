package client

import "wavewatch/world"

// Direction is a held movement key.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// DefaultSpeed is the avatar walk speed in world units per second.
const DefaultSpeed = 5.0

// PublishFunc receives the avatar's ground position after each step.
type PublishFunc func(x, z float64)

// Mover integrates held-key or joystick input into the local avatar's
// position each frame. It is not safe for concurrent use; input and stepping
// happen on the render loop.
type Mover struct {
	x, z    float64
	held    map[Direction]bool
	joyX    float64
	joyZ    float64
	speed   float64
	publish PublishFunc
}

// NewMover creates a mover at the given start position. publish may be nil
// for a mover that only tracks local state.
func NewMover(startX, startZ, speed float64, publish PublishFunc) *Mover {
	startX, startZ = world.ClampToWorld(startX, startZ)
	return &Mover{
		x:       startX,
		z:       startZ,
		held:    make(map[Direction]bool),
		speed:   speed,
		publish: publish,
	}
}

func (m *Mover) KeyDown(d Direction) { m.held[d] = true }
func (m *Mover) KeyUp(d Direction)   { delete(m.held, d) }

// SetJoystick records the virtual joystick drag vector, components clamped
// to [-1, 1]. Positive x moves right, positive z moves down-screen.
func (m *Mover) SetJoystick(x, z float64) {
	m.joyX = world.Clamp(x, -1, 1)
	m.joyZ = world.Clamp(z, -1, 1)
}

// ClearJoystick resets the joystick on touch release.
func (m *Mover) ClearJoystick() {
	m.joyX, m.joyZ = 0, 0
}

// inputVector resolves the active input source. Keyboard wins when both are
// active in the same frame; the joystick is only consulted with no key held.
func (m *Mover) inputVector() (float64, float64) {
	if len(m.held) > 0 {
		var dx, dz float64
		if m.held[DirLeft] {
			dx -= 1
		}
		if m.held[DirRight] {
			dx += 1
		}
		if m.held[DirUp] {
			dz -= 1
		}
		if m.held[DirDown] {
			dz += 1
		}
		return dx, dz
	}
	return m.joyX, m.joyZ
}

// Step advances the position by one frame of dt seconds, clamps it to the
// world boundary, and hands the result to the publish callback.
func (m *Mover) Step(dt float64) (float64, float64) {
	dx, dz := m.inputVector()
	if dx != 0 || dz != 0 {
		m.x, m.z = world.ClampToWorld(m.x+dx*m.speed*dt, m.z+dz*m.speed*dt)
		if m.publish != nil {
			m.publish(m.x, m.z)
		}
	}
	return m.x, m.z
}

func (m *Mover) Position() (float64, float64) {
	return m.x, m.z
}
