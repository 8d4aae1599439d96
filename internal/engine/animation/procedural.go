package animation

import (
	gomath "math"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// HeightFunc returns terrain height at a world-space XZ position. Foot IK
// consumes terrain purely through this query.
type HeightFunc func(x, z float32) float32

// headingSmoothSpeed is how aggressively the lean layer tracks heading
// changes, in 1/seconds.
const headingSmoothSpeed = 12.0

// ProceduralInput carries the per-frame gameplay signals the procedural
// layer reacts to. The core never decides when these happen.
type ProceduralInput struct {
	// Speed is the entity's planar movement speed in world units/second.
	Speed float32

	// Heading is the entity's facing angle in radians.
	Heading float32

	// ModelToWorld places the skeleton in the world; Scale is the model's
	// uniform scale, used to convert world-space offsets to model space.
	ModelToWorld math.Mat4
	Scale        float32

	// HeightAt samples terrain height. Nil disables foot planting.
	HeightAt HeightFunc
}

// Procedural is the per-entity driver for body lean, attack tilt, and
// foot planting. It owns only smoothing state; tuning comes from the
// config block.
type Procedural struct {
	Config ProceduralConfig

	heading     RotationSmoother
	attackTimer float32
}

// NewProcedural returns a driver with the given tuning.
func NewProcedural(cfg ProceduralConfig) *Procedural {
	return &Procedural{Config: cfg}
}

// TriggerAttack starts an attack-tilt pulse. Retriggers are ignored until
// the cooldown window has elapsed.
func (pr *Procedural) TriggerAttack() {
	if pr.attackTimer > 0 {
		return
	}
	pr.attackTimer = pr.Config.AttackTiltCooldown
}

// AttackTilt returns the current tilt pulse in radians: a half-sine over
// the cooldown window, peaking at AttackTiltMax.
func (pr *Procedural) AttackTilt() float32 {
	if pr.attackTimer <= 0 || pr.Config.AttackTiltCooldown <= 0 {
		return 0
	}
	progress := 1 - pr.attackTimer/pr.Config.AttackTiltCooldown
	return float32(gomath.Sin(float64(progress)*gomath.Pi)) * pr.Config.AttackTiltMax
}

// Update applies lean and foot planting to a player whose pose has just
// been computed. Call after Player.Update, before the renderer reads the
// bone matrices.
func (pr *Procedural) Update(p *Player, skel *Skeleton, ik FootIK, in ProceduralInput, dt float32) {
	if !ik.Valid {
		return
	}

	if pr.attackTimer > 0 {
		pr.attackTimer -= dt
		if pr.attackTimer < 0 {
			pr.attackTimer = 0
		}
	}

	if pr.Config.Lean {
		if in.Speed > 0.01 {
			pr.heading.SmoothToward(in.Heading, dt, headingSmoothSpeed)
		} else {
			pr.heading.DecayTurnRate(0.9)
		}

		forward := clampf(in.Speed*pr.Config.ForwardLeanFactor,
			-pr.Config.ForwardLeanMax, pr.Config.ForwardLeanMax)
		lateral := clampf(-pr.heading.TurnRate*pr.Config.LateralLeanFactor,
			-pr.Config.LateralLeanMax, pr.Config.LateralLeanMax)

		ApplyBodyLean(p, skel, ik.Spine, forward+pr.AttackTilt(), lateral)
	}

	if pr.Config.FootIK && in.HeightAt != nil && in.Scale != 0 {
		left, right := FootTerrainOffsets(p, ik, in.ModelToWorld, in.HeightAt)
		ApplyFootIK(p, skel, ik, in.Scale, left, right)
	}
}

// FootTerrainOffsets measures each foot's vertical distance to the
// terrain in world units (negative = terrain below the foot).
func FootTerrainOffsets(p *Player, ik FootIK, modelToWorld math.Mat4, heightAt HeightFunc) (left, right float32) {
	if !ik.Valid || heightAt == nil {
		return 0, 0
	}
	leftPos := modelToWorld.TransformPoint(p.WorldTransforms[ik.LeftFoot].Translation())
	rightPos := modelToWorld.TransformPoint(p.WorldTransforms[ik.RightFoot].Translation())

	left = heightAt(leftPos.X, leftPos.Z) - leftPos.Y
	right = heightAt(rightPos.X, rightPos.Z) - rightPos.Y
	return left, right
}
