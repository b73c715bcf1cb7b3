package bossbar

import "math"

// Location is a player's feet position in blocks and view angles in degrees,
// as last reported by the client.
type Location struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// Point is a world position in blocks.
type Point struct {
	X, Y, Z float64
}

// Place returns the point distance blocks straight along the player's view
// direction. Minecraft yaw 0 faces +Z and grows clockwise; positive pitch
// looks down.
func Place(loc Location, distance float64) Point {
	pitch := float64(loc.Pitch) * math.Pi / 180
	yaw := float64(loc.Yaw) * math.Pi / 180

	return Point{
		X: loc.X - math.Sin(yaw)*math.Cos(pitch)*distance,
		Y: loc.Y - math.Sin(pitch)*distance,
		Z: loc.Z + math.Cos(yaw)*math.Cos(pitch)*distance,
	}
}
