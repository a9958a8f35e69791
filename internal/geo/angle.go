package geo

import (
	"math"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}

// ToDeg converts radians to degrees.
func ToDeg(r float64) float64 {
	return r * 180 / math.Pi
}

// WrapAngle maps a into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// SignedTurn returns the shortest signed rotation taking from onto to.
func SignedTurn(from, to float64) float64 {
	return WrapAngle(to - from)
}

// AngleDifference returns the unsigned shortest angle between a and b,
// so 350° and 10° are 20° apart in either order.
func AngleDifference(a, b float64) float64 {
	return math.Abs(SignedTurn(a, b))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// YawPitch returns the hull-relative yaw and the pitch of the direction from
// g.Pivot to target. Yaw is measured from +Z toward +X.
func YawPitch(g core.Geometry, target core.Vec3) (yaw, pitch float64, ok bool) {
	d := target.Sub(g.Pivot)
	horizontal := math.Hypot(d.X, d.Z)
	if horizontal == 0 && d.Y == 0 {
		return 0, 0, false
	}
	yaw = WrapAngle(math.Atan2(d.X, d.Z) - g.HullYaw)
	pitch = math.Atan2(d.Y, horizontal)
	return yaw, pitch, true
}
