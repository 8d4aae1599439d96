package animation

import (
	gomath "math"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Player owns one entity's playback state and produces the skinning
// matrices the renderer consumes. Create one per animated entity; the
// skeleton and clips it reads are shared and never mutated.
type Player struct {
	CurrentClip int
	Time        float32
	Playing     bool
	Loop        bool
	Speed       float32

	// Crossfade state. BlendFactor runs 0..1 from the previous clip's
	// pose to the current clip's pose; at 1 the previous clip is dropped.
	PrevClip      int
	PrevTime      float32
	BlendFactor   float32
	BlendDuration float32

	// BoneMatrices are the final skinning matrices (world * inverse bind),
	// fixed size for GPU upload regardless of skeleton size.
	BoneMatrices [MaxBones]math.Mat4

	// WorldTransforms are the joint world transforms, consumed by IK and
	// by anything needing joint positions.
	WorldTransforms [MaxBones]math.Mat4
}

// NewPlayer returns a playing, looping player at the identity pose.
func NewPlayer() *Player {
	p := &Player{
		Playing: true,
		Loop:    true,
		Speed:   1,
	}
	p.Reset()
	return p
}

// Reset rewinds playback and restores the identity pose.
func (p *Player) Reset() {
	p.Time = 0
	p.PrevClip = -1
	p.BlendFactor = 1
	p.BlendDuration = 0.2
	for i := range p.BoneMatrices {
		p.BoneMatrices[i] = math.Identity()
		p.WorldTransforms[i] = math.Identity()
	}
}

// CrossfadeTo starts a blend from the current clip into clipIndex over
// duration seconds. Crossfading into the clip already playing is a no-op.
func (p *Player) CrossfadeTo(clipIndex int, duration float32) {
	if clipIndex == p.CurrentClip {
		return
	}
	if duration <= 0 {
		// Instant switch, nothing to blend from.
		p.PrevClip = -1
		p.BlendFactor = 1
		p.CurrentClip = clipIndex
		p.Time = 0
		return
	}
	p.PrevClip = p.CurrentClip
	p.PrevTime = p.Time
	p.BlendFactor = 0
	p.BlendDuration = duration
	p.CurrentClip = clipIndex
	p.Time = 0
}

// Update advances playback by dt seconds and recomputes the output
// matrices. Looping clips wrap; non-looping clips clamp at their duration
// and stop.
func (p *Player) Update(skel *Skeleton, clips []Clip, dt float32) {
	if len(clips) == 0 || !p.Playing {
		return
	}

	if p.CurrentClip < 0 || p.CurrentClip >= len(clips) {
		p.CurrentClip = 0
	}
	clip := &clips[p.CurrentClip]

	p.Time += dt * p.Speed
	if p.Time >= clip.Duration {
		if p.Loop {
			if clip.Duration > 0 {
				p.Time = float32(gomath.Mod(float64(p.Time), float64(clip.Duration)))
			} else {
				p.Time = 0
			}
		} else {
			p.Time = clip.Duration
			p.Playing = false
		}
	}

	if p.BlendFactor < 1 {
		p.BlendFactor += dt / p.BlendDuration
		if p.BlendFactor >= 1 {
			p.BlendFactor = 1
			p.PrevClip = -1
		}

		// The fading clip keeps advancing so the blend source stays live.
		if p.PrevClip >= 0 && p.PrevClip < len(clips) {
			prev := &clips[p.PrevClip]
			p.PrevTime += dt * p.Speed
			if p.PrevTime >= prev.Duration && prev.Duration > 0 {
				p.PrevTime = float32(gomath.Mod(float64(p.PrevTime), float64(prev.Duration)))
			}
		}
	}

	p.computePose(skel, clips)
}

// sampleJoint evaluates one clip's channel for a joint, falling back to
// the bind pose per missing track.
func sampleJoint(clip *Clip, channels map[int]*Channel, jointIdx int, t float32, joint *Joint) (math.Vec3, math.Quat, math.Vec3) {
	translation := joint.LocalTranslation
	rotation := joint.LocalRotation
	scale := joint.LocalScale

	if clip == nil {
		return translation, rotation, scale
	}
	ch, ok := channels[jointIdx]
	if !ok {
		return translation, rotation, scale
	}

	if len(ch.PosTimes) > 0 {
		translation = InterpolateVec3Keys(ch.PosTimes, ch.Positions, t)
	}
	if len(ch.RotTimes) > 0 {
		rotation = InterpolateQuatKeys(ch.RotTimes, ch.Rotations, t)
	}
	if len(ch.ScaleTimes) > 0 {
		scale = InterpolateVec3Keys(ch.ScaleTimes, ch.Scales, t)
	}
	return translation, rotation, scale
}

func channelIndex(clip *Clip) map[int]*Channel {
	idx := make(map[int]*Channel, len(clip.Channels))
	for i := range clip.Channels {
		idx[clip.Channels[i].JointIndex] = &clip.Channels[i]
	}
	return idx
}

// computePose samples the current (and, mid-crossfade, previous) clip,
// composes local transforms, walks the hierarchy, and writes skinning
// matrices.
func (p *Player) computePose(skel *Skeleton, clips []Clip) {
	numJoints := len(skel.Joints)
	if numJoints == 0 {
		return
	}

	var clip *Clip
	var curChannels map[int]*Channel
	if p.CurrentClip >= 0 && p.CurrentClip < len(clips) {
		clip = &clips[p.CurrentClip]
		curChannels = channelIndex(clip)
	}

	var prevClip *Clip
	var prevChannels map[int]*Channel
	blending := p.BlendFactor < 1 && p.PrevClip >= 0 && p.PrevClip < len(clips)
	if blending {
		prevClip = &clips[p.PrevClip]
		prevChannels = channelIndex(prevClip)
	}

	count := numJoints
	if count > MaxBones {
		count = MaxBones
	}

	for i := 0; i < count; i++ {
		joint := &skel.Joints[i]

		translation, rotation, scale := sampleJoint(clip, curChannels, i, p.Time, joint)

		if blending {
			prevT, prevR, prevS := sampleJoint(prevClip, prevChannels, i, p.PrevTime, joint)
			t := p.BlendFactor
			translation = prevT.Lerp(translation, t)
			rotation = prevR.Slerp(rotation, t)
			scale = prevS.Lerp(scale, t)
		}

		local := math.Compose(translation, rotation, scale)

		if joint.ParentIndex >= 0 && joint.ParentIndex < count {
			p.WorldTransforms[i] = p.WorldTransforms[joint.ParentIndex].Mul(local)
		} else {
			p.WorldTransforms[i] = local
		}
	}

	for i := 0; i < count; i++ {
		p.BoneMatrices[i] = p.WorldTransforms[i].Mul(skel.Joints[i].InverseBind)
	}

	for i := count; i < MaxBones; i++ {
		p.BoneMatrices[i] = math.Identity()
		p.WorldTransforms[i] = math.Identity()
	}
}
