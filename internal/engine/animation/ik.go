package animation

import (
	gomath "math"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

const (
	// ikThreshold is the dead zone for foot offsets; corrections smaller
	// than this cause visible jitter on flat ground and are skipped.
	ikThreshold = 0.1

	// ikMaxCorrection caps how far a foot may be moved per frame.
	ikMaxCorrection = 8.0

	degenerateLength = 0.001
)

// SolveTwoBoneIK analytically bends the upper/lower/end joint chain so
// the end joint reaches target, bending toward poleHint. It mutates the
// player's world transforms and skinning matrices in place and rigidly
// re-bases any direct children of the end joint (toes). Degenerate
// geometry leaves the pose untouched.
func SolveTwoBoneIK(p *Player, skel *Skeleton, upper, lower, end int, target, poleHint math.Vec3) {
	limit := len(skel.Joints)
	if limit > MaxBones {
		limit = MaxBones
	}
	if upper < 0 || lower < 0 || end < 0 || upper >= limit || lower >= limit || end >= limit {
		return
	}

	posA := p.WorldTransforms[upper].Translation()
	posB := p.WorldTransforms[lower].Translation()
	posC := p.WorldTransforms[end].Translation()

	lenAB := posB.Sub(posA).Length()
	lenBC := posC.Sub(posB).Length()
	if lenAB < degenerateLength || lenBC < degenerateLength {
		return
	}

	// Clamp the target to the reachable annulus around the upper joint.
	t := target
	lenAT := t.Sub(posA).Length()
	maxReach := lenAB + lenBC
	minReach := float32(gomath.Abs(float64(lenAB - lenBC)))
	if lenAT > maxReach {
		t = posA.Add(t.Sub(posA).Normalize().Scale(maxReach))
		lenAT = maxReach
	}
	if lenAT < minReach {
		if lenAT < degenerateLength {
			return
		}
		t = posA.Add(t.Sub(posA).Normalize().Scale(minReach))
		lenAT = minReach
	}

	// Law of cosines: bend angle at the upper joint.
	cosA := (lenAB*lenAB + lenAT*lenAT - lenBC*lenBC) / (2 * lenAB * lenAT)
	if cosA > 1 {
		cosA = 1
	} else if cosA < -1 {
		cosA = -1
	}
	angleA := float32(gomath.Acos(float64(cosA)))

	dirAT := t.Sub(posA).Normalize()

	// Bend plane from the pole hint projected off the chain axis, falling
	// back to the current knee direction.
	toPole := poleHint.Sub(posA)
	toPole = toPole.Sub(dirAT.Scale(toPole.Dot(dirAT)))
	if toPole.Length() < degenerateLength {
		toPole = posB.Sub(posA)
		toPole = toPole.Sub(dirAT.Scale(toPole.Dot(dirAT)))
	}
	if toPole.Length() < degenerateLength {
		return
	}
	bendDir := toPole.Normalize()

	newB := posA.
		Add(dirAT.Scale(float32(gomath.Cos(float64(angleA))) * lenAB)).
		Add(bendDir.Scale(float32(gomath.Sin(float64(angleA))) * lenAB))
	newC := t

	// Re-aim each bone by the minimal rotation between its old and new
	// direction, keeping the joint's own position fixed.
	oldDirAB := posB.Sub(posA).Normalize()
	newDirAB := newB.Sub(posA).Normalize()
	deltaUpper := math.QuatBetween(oldDirAB, newDirAB).ToMat4()
	rotatedUpper := deltaUpper.Mul(p.WorldTransforms[upper].Rotation())
	rotatedUpper.SetTranslation(posA)
	p.WorldTransforms[upper] = rotatedUpper

	oldDirBC := posC.Sub(posB).Normalize()
	newDirBC := newC.Sub(newB).Normalize()
	deltaLower := math.QuatBetween(oldDirBC, newDirBC).ToMat4()
	rotatedLower := deltaLower.Mul(p.WorldTransforms[lower].Rotation())
	rotatedLower.SetTranslation(newB)
	p.WorldTransforms[lower] = rotatedLower

	p.WorldTransforms[end].SetTranslation(newC)

	p.BoneMatrices[upper] = p.WorldTransforms[upper].Mul(skel.Joints[upper].InverseBind)
	p.BoneMatrices[lower] = p.WorldTransforms[lower].Mul(skel.Joints[lower].InverseBind)
	p.BoneMatrices[end] = p.WorldTransforms[end].Mul(skel.Joints[end].InverseBind)

	// Carry direct children of the end joint along by the same delta.
	count := len(skel.Joints)
	if count > MaxBones {
		count = MaxBones
	}
	for i := 0; i < count; i++ {
		if skel.Joints[i].ParentIndex != end {
			continue
		}
		offset := p.WorldTransforms[i].Translation().Sub(posC)
		p.WorldTransforms[i].SetTranslation(newC.Add(offset))
		p.BoneMatrices[i] = p.WorldTransforms[i].Mul(skel.Joints[i].InverseBind)
	}
}

// ApplyFootIK plants both feet given their terrain-relative vertical
// offsets (negative = foot should move down). If either leg must move
// down, the whole skeleton is first dropped by the more negative offset
// (the hips are the root, so every joint translates together), then each
// leg solves its residual with the two-bone solver.
func ApplyFootIK(p *Player, skel *Skeleton, ik FootIK, scale, leftOffset, rightOffset float32) {
	if !ik.Valid || scale == 0 {
		return
	}
	if gomath.Abs(float64(leftOffset)) <= ikThreshold && gomath.Abs(float64(rightOffset)) <= ikThreshold {
		return
	}

	leftOffset = clampf(leftOffset, -ikMaxCorrection, ikMaxCorrection)
	rightOffset = clampf(rightOffset, -ikMaxCorrection, ikMaxCorrection)

	pelvisDrop := leftOffset
	if rightOffset < pelvisDrop {
		pelvisDrop = rightOffset
	}
	if pelvisDrop < 0 {
		dropModel := pelvisDrop / scale
		count := len(skel.Joints)
		if count > MaxBones {
			count = MaxBones
		}
		for i := 0; i < count; i++ {
			p.WorldTransforms[i][13] += dropModel
			p.BoneMatrices[i] = p.WorldTransforms[i].Mul(skel.Joints[i].InverseBind)
		}
		leftOffset -= pelvisDrop
		rightOffset -= pelvisDrop
	}

	solveLeg := func(upper, lower, foot int, offset float32) {
		if gomath.Abs(float64(offset)) < ikThreshold {
			return
		}
		footPos := p.WorldTransforms[foot].Translation()
		target := footPos
		target.Y += offset / scale

		// Pole: push the knee outward along its current bend, relative to
		// the hip-foot midline.
		kneePos := p.WorldTransforms[lower].Translation()
		hipPos := p.WorldTransforms[upper].Translation()
		mid := hipPos.Add(footPos).Scale(0.5)
		pole := kneePos.Add(kneePos.Sub(mid).Normalize().Scale(0.5))

		SolveTwoBoneIK(p, skel, upper, lower, foot, target, pole)
	}

	solveLeg(ik.LeftUpper, ik.LeftLower, ik.LeftFoot, leftOffset)
	solveLeg(ik.RightUpper, ik.RightLower, ik.RightFoot, rightOffset)
}

// ApplyBodyLean pitches (forwardLean) and rolls (lateralLean) the spine
// and all of its descendants about the spine joint's current position.
// Angles are radians.
func ApplyBodyLean(p *Player, skel *Skeleton, spineIndex int, forwardLean, lateralLean float32) {
	if spineIndex < 0 || spineIndex >= len(skel.Joints) || spineIndex >= MaxBones {
		return
	}
	if gomath.Abs(float64(forwardLean)) < 0.001 && gomath.Abs(float64(lateralLean)) < 0.001 {
		return
	}

	leanQ := math.QuatFromAxisAngle(math.Vec3{X: 1}, forwardLean).
		Mul(math.QuatFromAxisAngle(math.Vec3{Z: 1}, lateralLean))

	pivot := p.WorldTransforms[spineIndex].Translation()
	pivotXform := math.Translate(pivot.X, pivot.Y, pivot.Z).
		Mul(leanQ.ToMat4()).
		Mul(math.Translate(-pivot.X, -pivot.Y, -pivot.Z))

	count := len(skel.Joints)
	if count > MaxBones {
		count = MaxBones
	}
	for i := 0; i < count; i++ {
		// Walk the parent chain to see whether i hangs off the spine.
		cur := i
		descendant := false
		for cur >= 0 {
			if cur == spineIndex {
				descendant = true
				break
			}
			cur = skel.Joints[cur].ParentIndex
		}
		if !descendant {
			continue
		}

		p.WorldTransforms[i] = pivotXform.Mul(p.WorldTransforms[i])
		p.BoneMatrices[i] = p.WorldTransforms[i].Mul(skel.Joints[i].InverseBind)
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
