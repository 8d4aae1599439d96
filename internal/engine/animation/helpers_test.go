package animation

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// jointSpec declares a test joint by name, parent, and local bind offset.
type jointSpec struct {
	name   string
	parent int
	offset math.Vec3
}

// buildSkeleton assembles a skeleton from parent-first joint specs with
// identity bind rotations and computed inverse-bind matrices.
func buildSkeleton(t *testing.T, specs []jointSpec) *Skeleton {
	t.Helper()

	skel := &Skeleton{Joints: make([]Joint, len(specs))}
	worlds := make([]math.Mat4, len(specs))

	for i, s := range specs {
		local := math.Translate(s.offset.X, s.offset.Y, s.offset.Z)
		if s.parent >= 0 {
			worlds[i] = worlds[s.parent].Mul(local)
		} else {
			worlds[i] = local
		}
		skel.Joints[i] = Joint{
			Name:             s.name,
			ParentIndex:      s.parent,
			InverseBind:      worlds[i].Inverse(),
			LocalTranslation: s.offset,
			LocalRotation:    math.QuatIdentity(),
			LocalScale:       math.Vec3{X: 1, Y: 1, Z: 1},
		}
	}
	if err := skel.Validate(); err != nil {
		t.Fatalf("test skeleton invalid: %v", err)
	}
	return skel
}

// setBindPose writes the skeleton's bind-pose world transforms into the
// player, as if a pose had just been computed.
func setBindPose(p *Player, skel *Skeleton) {
	for i := range skel.Joints {
		j := &skel.Joints[i]
		local := math.Compose(j.LocalTranslation, j.LocalRotation, j.LocalScale)
		if j.ParentIndex >= 0 {
			p.WorldTransforms[i] = p.WorldTransforms[j.ParentIndex].Mul(local)
		} else {
			p.WorldTransforms[i] = local
		}
	}
	for i := range skel.Joints {
		p.BoneMatrices[i] = p.WorldTransforms[i].Mul(skel.Joints[i].InverseBind)
	}
}

// translationClip animates the root joint's translation linearly from
// start to end over duration.
func translationClip(name string, duration float32, start, end math.Vec3) Clip {
	return Clip{
		Name:     name,
		Duration: duration,
		Channels: []Channel{
			{
				JointIndex: 0,
				PosTimes:   []float32{0, duration},
				Positions:  []math.Vec3{start, end},
			},
		},
	}
}

func near(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

func vecNear(a, b math.Vec3, eps float32) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}
