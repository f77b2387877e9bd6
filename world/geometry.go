package world

// WorldBound is the half-extent of the square walkable area. Positions are
// clamped to [-WorldBound, WorldBound] on both x and z after integration.
const WorldBound = 20.0

// GroundY is the fixed vertical offset avatars stand at.
const GroundY = 0.5

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampToWorld clamps a ground-plane position to the world boundary.
func ClampToWorld(x, z float64) (float64, float64) {
	return Clamp(x, -WorldBound, WorldBound), Clamp(z, -WorldBound, WorldBound)
}
