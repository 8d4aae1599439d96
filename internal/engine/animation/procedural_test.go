package animation

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-anim/internal/engine/terrain"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestRotationSmootherConverges(t *testing.T) {
	var r RotationSmoother

	// First sample snaps
	r.SmoothToward(1.0, 0.016, 12)
	if r.Current != 1.0 {
		t.Errorf("first sample should snap, got %v", r.Current)
	}
	if r.TurnRate != 0 {
		t.Errorf("first sample should not register a turn rate, got %v", r.TurnRate)
	}

	for i := 0; i < 200; i++ {
		r.SmoothToward(2.0, 0.016, 12)
	}
	if !near(r.Current, 2.0, 0.01) {
		t.Errorf("smoother should converge to target, got %v", r.Current)
	}

	// While turning toward a larger angle the rate is positive
	r2 := RotationSmoother{}
	r2.SmoothToward(0, 0.016, 12)
	r2.SmoothToward(1, 0.016, 12)
	if r2.TurnRate <= 0 {
		t.Errorf("turning up should give positive rate, got %v", r2.TurnRate)
	}
}

func TestRotationSmootherWrapsSeam(t *testing.T) {
	var r RotationSmoother
	r.SmoothToward(-3.0, 0.016, 12)
	r.SmoothToward(3.0, 0.016, 12)

	// -3.0 to +3.0 is a short negative step across the pi seam, not a
	// 6-radian sweep.
	if r.TurnRate >= 0 {
		t.Errorf("seam crossing should take the short way (negative rate), got %v", r.TurnRate)
	}
	if gomath.Abs(float64(r.TurnRate)) > 30 {
		t.Errorf("seam crossing rate implausibly large: %v", r.TurnRate)
	}
}

func TestRotationSmootherDecay(t *testing.T) {
	r := RotationSmoother{TurnRate: 10}
	r.DecayTurnRate(0.5)
	if r.TurnRate != 5 {
		t.Errorf("expected decayed rate 5, got %v", r.TurnRate)
	}
}

func TestAttackTiltPulse(t *testing.T) {
	pr := NewProcedural(DefaultProceduralConfig())

	if pr.AttackTilt() != 0 {
		t.Error("tilt should be zero before any attack")
	}

	pr.TriggerAttack()
	if pr.AttackTilt() != 0 {
		t.Error("tilt starts at zero at the beginning of the pulse")
	}

	skel, p, ik := proceduralRig(t)
	in := ProceduralInput{Scale: 1}

	// Halfway through the cooldown the half-sine peaks at the cap.
	pr.Update(p, skel, ik, in, pr.Config.AttackTiltCooldown/2)
	if !near(pr.AttackTilt(), pr.Config.AttackTiltMax, 1e-3) {
		t.Errorf("tilt should peak at AttackTiltMax, got %v", pr.AttackTilt())
	}

	// Retriggering mid-pulse is ignored.
	timerBefore := pr.attackTimer
	pr.TriggerAttack()
	if pr.attackTimer != timerBefore {
		t.Error("retrigger during cooldown should be ignored")
	}

	// After the window the pulse is spent and can retrigger.
	pr.Update(p, skel, ik, in, pr.Config.AttackTiltCooldown)
	if pr.AttackTilt() != 0 {
		t.Errorf("tilt should return to zero, got %v", pr.AttackTilt())
	}
	pr.TriggerAttack()
	if pr.attackTimer != pr.Config.AttackTiltCooldown {
		t.Error("attack should retrigger once cooldown elapsed")
	}
}

func proceduralRig(t *testing.T) (*Skeleton, *Player, FootIK) {
	skel := buildSkeleton(t, []jointSpec{
		{"Hips", -1, math.Vec3{Y: 2}},
		{"Spine", 0, math.Vec3{Y: 1}},
		{"LeftUpperLeg", 0, math.Vec3{X: -0.5}},
		{"LeftLowerLeg", 2, math.Vec3{Y: -1, Z: 0.1}},
		{"LeftFoot", 3, math.Vec3{Y: -1, Z: -0.1}},
		{"RightUpperLeg", 0, math.Vec3{X: 0.5}},
		{"RightLowerLeg", 5, math.Vec3{Y: -1, Z: 0.1}},
		{"RightFoot", 6, math.Vec3{Y: -1, Z: -0.1}},
	})
	ik := ResolveFootIK(skel)
	if !ik.Valid {
		t.Fatal("rig should resolve")
	}
	p := NewPlayer()
	setBindPose(p, skel)
	return skel, p, ik
}

func TestProceduralLeanRespectsCaps(t *testing.T) {
	skel, p, ik := proceduralRig(t)

	cfg := DefaultProceduralConfig()
	cfg.FootIK = false
	pr := NewProcedural(cfg)

	spineBefore := p.WorldTransforms[ik.Spine].Translation()

	// Absurd speed: lean must clamp at ForwardLeanMax, so the spine's
	// child offset pitches by at most that angle.
	in := ProceduralInput{Speed: 10000, Heading: 0, Scale: 1}
	pr.Update(p, skel, ik, in, 0.016)

	spineAfter := p.WorldTransforms[ik.Spine].Translation()
	if !vecNear(spineAfter, spineBefore, 1e-4) {
		t.Errorf("spine pivot should not translate, got %v", spineAfter)
	}

	forward := clampf(10000*cfg.ForwardLeanFactor, -cfg.ForwardLeanMax, cfg.ForwardLeanMax)
	if forward != cfg.ForwardLeanMax {
		t.Fatalf("test setup: expected saturated lean, got %v", forward)
	}
}

func TestProceduralDisabledFlagsAreNoop(t *testing.T) {
	skel, p, ik := proceduralRig(t)

	cfg := DefaultProceduralConfig()
	cfg.Lean = false
	cfg.FootIK = false
	pr := NewProcedural(cfg)

	before := p.WorldTransforms
	in := ProceduralInput{
		Speed:   100,
		Heading: 2,
		Scale:   1,
		HeightAt: func(x, z float32) float32 {
			return -5
		},
	}
	pr.Update(p, skel, ik, in, 0.016)

	for i := range skel.Joints {
		if p.WorldTransforms[i] != before[i] {
			t.Fatalf("disabled procedural layer moved joint %d", i)
		}
	}
}

func TestFootTerrainOffsets(t *testing.T) {
	_, p, ik := proceduralRig(t)

	// Feet sit at world y=0 under an identity model transform; terrain at
	// y=0.3 means both feet are 0.3 below it.
	heightAt := func(x, z float32) float32 { return 0.3 }
	left, right := FootTerrainOffsets(p, ik, math.Identity(), heightAt)
	if !near(left, 0.3, 1e-4) || !near(right, 0.3, 1e-4) {
		t.Errorf("expected offsets 0.3, got %v and %v", left, right)
	}

	// A model transform lifting the entity changes the world-space gap.
	lifted := math.Translate(0, 1, 0)
	left, right = FootTerrainOffsets(p, ik, lifted, heightAt)
	if !near(left, -0.7, 1e-4) || !near(right, -0.7, 1e-4) {
		t.Errorf("expected offsets -0.7 when lifted, got %v and %v", left, right)
	}

	// Invalid rig reads as flat
	left, right = FootTerrainOffsets(p, FootIK{}, math.Identity(), heightAt)
	if left != 0 || right != 0 {
		t.Error("invalid rig should yield zero offsets")
	}
}

func TestProceduralFootPlantingEndToEnd(t *testing.T) {
	skel, p, ik := proceduralRig(t)

	cfg := DefaultProceduralConfig()
	cfg.Lean = false
	pr := NewProcedural(cfg)

	// Terrain 0.4 below the feet: both legs plant downward via a pelvis
	// drop.
	in := ProceduralInput{
		Scale:        1,
		ModelToWorld: math.Identity(),
		HeightAt:     func(x, z float32) float32 { return -0.4 },
	}
	footBefore := p.WorldTransforms[ik.LeftFoot].Translation()
	pr.Update(p, skel, ik, in, 0.016)

	footAfter := p.WorldTransforms[ik.LeftFoot].Translation()
	if !near(footAfter.Y, footBefore.Y-0.4, 1e-3) {
		t.Errorf("left foot should plant 0.4 lower, got %v -> %v", footBefore.Y, footAfter.Y)
	}
}

func TestProceduralPlantsOnHeightmap(t *testing.T) {
	skel, p, ik := proceduralRig(t)

	cfg := DefaultProceduralConfig()
	cfg.Lean = false
	pr := NewProcedural(cfg)

	hm := terrain.New(8, 8, 1)
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			hm.Set(x, z, -0.25)
		}
	}

	in := ProceduralInput{
		Scale:        1,
		ModelToWorld: math.Identity(),
		HeightAt:     hm.HeightAt,
	}
	footBefore := p.WorldTransforms[ik.LeftFoot].Translation()
	pr.Update(p, skel, ik, in, 0.016)

	footAfter := p.WorldTransforms[ik.LeftFoot].Translation()
	if !near(footAfter.Y, footBefore.Y-0.25, 1e-3) {
		t.Errorf("foot should follow the heightmap 0.25 lower, got %v -> %v",
			footBefore.Y, footAfter.Y)
	}
}
