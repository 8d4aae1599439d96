// Package animation implements the skeletal animation core: clip playback
// with crossfade blending, a parameter-driven state machine, and an
// analytic IK layer for foot planting and body lean.
//
// Skeleton and clip data are immutable after load and shared by reference
// across every player instance using the same model; all per-instance
// state lives in Player, StateMachine, and Procedural, so entities can be
// updated in parallel without locking.
package animation

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// MaxBones is the fixed skinning capacity. Skeletons with more joints are
// truncated; unused output slots stay identity.
const MaxBones = 64

// Joint is a single bone in the hierarchy. ParentIndex is -1 for the root.
type Joint struct {
	Name        string
	ParentIndex int
	InverseBind math.Mat4

	// Bind-pose local transform, the fallback for channels that do not
	// animate a track.
	LocalTranslation math.Vec3
	LocalRotation    math.Quat
	LocalScale       math.Vec3
}

// Skeleton is an ordered joint list. Joints must be stored parent-first:
// every joint's parent sits at a lower index, which lets the hierarchy
// walk be a single linear pass.
type Skeleton struct {
	Joints []Joint
}

// Validate checks the parent-first ordering invariant. Data violating it
// would silently animate children from stale parent transforms, so it is
// rejected up front.
func (s *Skeleton) Validate() error {
	for i := range s.Joints {
		p := s.Joints[i].ParentIndex
		if p < -1 || p >= len(s.Joints) {
			return fmt.Errorf("joint %d (%s): parent index %d out of range", i, s.Joints[i].Name, p)
		}
		if p >= i {
			return fmt.Errorf("joint %d (%s): parent %d not stored before child", i, s.Joints[i].Name, p)
		}
	}
	return nil
}

// Channel animates one joint. Each track is an independent, possibly
// sparse (times, values) pair; an empty track falls back to the joint's
// bind pose.
type Channel struct {
	JointIndex int

	PosTimes  []float32
	Positions []math.Vec3

	RotTimes  []float32
	Rotations []math.Quat

	ScaleTimes []float32
	Scales     []math.Vec3
}

// Clip is a named animation with a fixed duration in seconds.
type Clip struct {
	Name     string
	Duration float32
	Channels []Channel
}

// InterpolateVec3Keys samples a sparse vector track at time t. Times are
// assumed sorted ascending; t clamps to the first and last key.
func InterpolateVec3Keys(times []float32, values []math.Vec3, t float32) math.Vec3 {
	if len(times) == 0 || len(values) == 0 {
		return math.Vec3{}
	}
	if len(times) == 1 || t <= times[0] {
		return values[0]
	}
	last := len(times) - 1
	if t >= times[last] {
		return values[last]
	}
	for i := 0; i < last; i++ {
		if t >= times[i] && t <= times[i+1] {
			factor := (t - times[i]) / (times[i+1] - times[i])
			return values[i].Lerp(values[i+1], factor)
		}
	}
	return values[last]
}

// InterpolateQuatKeys samples a sparse rotation track at time t using
// spherical interpolation between the surrounding keys.
func InterpolateQuatKeys(times []float32, values []math.Quat, t float32) math.Quat {
	if len(times) == 0 || len(values) == 0 {
		return math.QuatIdentity()
	}
	if len(times) == 1 || t <= times[0] {
		return values[0]
	}
	last := len(times) - 1
	if t >= times[last] {
		return values[last]
	}
	for i := 0; i < last; i++ {
		if t >= times[i] && t <= times[i+1] {
			factor := (t - times[i]) / (times[i+1] - times[i])
			return values[i].Slerp(values[i+1], factor)
		}
	}
	return values[last]
}

// FootIK holds the joint indices foot planting and lean operate on,
// resolved once per skeleton by name. Valid gates all IK use.
type FootIK struct {
	Hips  int
	Spine int

	LeftUpper, LeftLower, LeftFoot    int
	RightUpper, RightLower, RightFoot int

	Valid bool
}

// ResolveFootIK looks up the humanoid rig joints by name.
func ResolveFootIK(skel *Skeleton) FootIK {
	ik := FootIK{
		Hips: -1, Spine: -1,
		LeftUpper: -1, LeftLower: -1, LeftFoot: -1,
		RightUpper: -1, RightLower: -1, RightFoot: -1,
	}
	for i := range skel.Joints {
		switch skel.Joints[i].Name {
		case "Hips":
			ik.Hips = i
		case "Spine":
			ik.Spine = i
		case "LeftUpperLeg":
			ik.LeftUpper = i
		case "LeftLowerLeg":
			ik.LeftLower = i
		case "LeftFoot":
			ik.LeftFoot = i
		case "RightUpperLeg":
			ik.RightUpper = i
		case "RightLowerLeg":
			ik.RightLower = i
		case "RightFoot":
			ik.RightFoot = i
		}
	}
	// Joints past the skinning cap never receive a pose, so a rig whose
	// chain sits there cannot be corrected either.
	inCap := func(i int) bool { return i >= 0 && i < MaxBones }
	ik.Valid = inCap(ik.Hips) && inCap(ik.Spine) &&
		inCap(ik.LeftUpper) && inCap(ik.LeftLower) && inCap(ik.LeftFoot) &&
		inCap(ik.RightUpper) && inCap(ik.RightLower) && inCap(ik.RightFoot)
	return ik
}

// RotationSmoother is an exponential angle smoother that also tracks the
// turn rate, which drives lateral lean.
type RotationSmoother struct {
	Current     float32
	TurnRate    float32
	initialized bool
}

// SmoothToward moves Current toward target, wrapping across the -pi..pi
// seam, and records the angular velocity of the step.
func (r *RotationSmoother) SmoothToward(target, dt, speed float32) {
	if !r.initialized {
		r.Current = target
		r.initialized = true
		return
	}
	blend := 1 - float32(gomath.Exp(float64(-speed*dt)))
	diff := float32(gomath.Mod(float64(target-r.Current)+gomath.Pi, 2*gomath.Pi)) - gomath.Pi
	step := diff * blend
	r.Current += step
	if dt > 0.0001 {
		r.TurnRate = step / dt
	} else {
		r.TurnRate = 0
	}
}

// DecayTurnRate bleeds off the tracked turn rate when no new heading
// samples arrive.
func (r *RotationSmoother) DecayTurnRate(factor float32) {
	r.TurnRate *= factor
}

// ProceduralConfig is the per-archetype tuning block for the procedural
// layer: foot planting, locomotion lean, and attack tilt.
type ProceduralConfig struct {
	FootIK bool `yaml:"foot_ik"`
	Lean   bool `yaml:"lean"`

	ForwardLeanFactor float32 `yaml:"forward_lean_factor"`
	ForwardLeanMax    float32 `yaml:"forward_lean_max"`
	LateralLeanFactor float32 `yaml:"lateral_lean_factor"`
	LateralLeanMax    float32 `yaml:"lateral_lean_max"`

	AttackTiltMax      float32 `yaml:"attack_tilt_max"`
	AttackTiltCooldown float32 `yaml:"attack_tilt_cooldown"`
}

// DefaultProceduralConfig returns the stock humanoid tuning.
func DefaultProceduralConfig() ProceduralConfig {
	return ProceduralConfig{
		FootIK:             true,
		Lean:               true,
		ForwardLeanFactor:  0.015,
		ForwardLeanMax:     0.18,
		LateralLeanFactor:  0.06,
		LateralLeanMax:     0.15,
		AttackTiltMax:      0.4,
		AttackTiltCooldown: 0.5,
	}
}
