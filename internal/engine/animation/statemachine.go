package animation

import (
	gomath "math"
	"sort"
)

// eqTolerance is the comparison slop for float equality conditions.
const eqTolerance = 0.001

// Op is a condition comparison operator.
type Op int

// Condition operators. GT/LT/EQ/NE compare float parameters against a
// threshold; IsTrue/IsFalse test bool parameters.
const (
	OpGreater Op = iota
	OpLess
	OpEqual
	OpNotEqual
	OpIsTrue
	OpIsFalse
)

// ParamValue is a tagged float-or-bool parameter value. Conditions fail
// closed on a kind mismatch.
type ParamValue struct {
	isBool bool
	f      float32
	b      bool
}

// FloatParam wraps a float parameter value.
func FloatParam(v float32) ParamValue {
	return ParamValue{f: v}
}

// BoolParam wraps a bool parameter value.
func BoolParam(v bool) ParamValue {
	return ParamValue{isBool: true, b: v}
}

// Float returns the float value and whether the parameter holds one.
func (p ParamValue) Float() (float32, bool) {
	return p.f, !p.isBool
}

// Bool returns the bool value and whether the parameter holds one.
func (p ParamValue) Bool() (bool, bool) {
	return p.b, p.isBool
}

// Condition is a single parameter comparison guarding a transition.
type Condition struct {
	Param     string
	Op        Op
	Threshold float32
}

// Evaluate checks the condition against the parameter bag. Unknown
// parameters and type mismatches are never satisfied.
func (c Condition) Evaluate(params map[string]ParamValue) bool {
	val, ok := params[c.Param]
	if !ok {
		return false
	}

	switch c.Op {
	case OpIsTrue:
		b, isBool := val.Bool()
		return isBool && b
	case OpIsFalse:
		b, isBool := val.Bool()
		return isBool && !b
	case OpGreater:
		f, isFloat := val.Float()
		return isFloat && f > c.Threshold
	case OpLess:
		f, isFloat := val.Float()
		return isFloat && f < c.Threshold
	case OpEqual:
		f, isFloat := val.Float()
		return isFloat && gomath.Abs(float64(f-c.Threshold)) < eqTolerance
	case OpNotEqual:
		f, isFloat := val.Float()
		return isFloat && gomath.Abs(float64(f-c.Threshold)) >= eqTolerance
	}
	return false
}

// Transition is a directed edge to another state, taken when every
// condition passes (AND semantics). Higher priority is checked first.
type Transition struct {
	Target     string
	Conditions []Condition
	Crossfade  float32
	Priority   int
}

// State binds a clip to playback settings and the transitions out of it.
// ClipIndex is resolved by BindClips; a state whose clip never resolved
// keeps index -1 and cannot be entered.
type State struct {
	Name      string
	ClipName  string
	ClipIndex int
	Loop      bool
	Speed     float32

	Transitions []Transition
}

// StateMachine decides which clip a Player should be playing by
// evaluating declared transitions against its parameter bag. Topology is
// fixed after declaration; only parameters change at runtime.
type StateMachine struct {
	states       map[string]*State
	params       map[string]ParamValue
	current      string
	defaultState string
	bound        bool
}

// NewStateMachine returns an empty machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		states: make(map[string]*State),
		params: make(map[string]ParamValue),
	}
}

// AddState registers a state declaration, replacing any previous state
// with the same name.
func (m *StateMachine) AddState(state State) {
	state.ClipIndex = -1
	m.states[state.Name] = &state
}

// SetDefaultState names the state entered when clips are bound.
func (m *StateMachine) SetDefaultState(name string) {
	m.defaultState = name
}

// BindClips resolves every state's clip name against a model's clip list
// and enters the default state. It reports whether all names resolved;
// unresolved states stay declared but unenterable. Transition order is
// fixed here: descending priority, declaration order among equals.
func (m *StateMachine) BindClips(clips []Clip) bool {
	allFound := true
	for _, state := range m.states {
		state.ClipIndex = -1
		for i := range clips {
			if clips[i].Name == state.ClipName {
				state.ClipIndex = i
				break
			}
		}
		if state.ClipIndex < 0 {
			allFound = false
		}

		sort.SliceStable(state.Transitions, func(a, b int) bool {
			return state.Transitions[a].Priority > state.Transitions[b].Priority
		})
	}
	m.bound = true

	if m.defaultState != "" {
		m.current = m.defaultState
	}

	return allFound
}

// SetFloat sets a float parameter.
func (m *StateMachine) SetFloat(name string, v float32) {
	m.params[name] = FloatParam(v)
}

// SetBool sets a bool parameter.
func (m *StateMachine) SetBool(name string, v bool) {
	m.params[name] = BoolParam(v)
}

// GetFloat returns a float parameter, or 0 if unset or not a float.
func (m *StateMachine) GetFloat(name string) float32 {
	val, present := m.params[name]
	if !present {
		return 0
	}
	f, ok := val.Float()
	if !ok {
		return 0
	}
	return f
}

// GetBool returns a bool parameter, or false if unset or not a bool.
func (m *StateMachine) GetBool(name string) bool {
	val, present := m.params[name]
	if !present {
		return false
	}
	b, ok := val.Bool()
	return ok && b
}

// CurrentState returns the name of the active state.
func (m *StateMachine) CurrentState() string {
	return m.current
}

// IsBound reports whether BindClips has run.
func (m *StateMachine) IsBound() bool {
	return m.bound
}

// enterState switches to a resolvable state, crossfading the player and
// copying the state's playback settings onto it.
func (m *StateMachine) enterState(name string, player *Player, crossfade float32) {
	state, ok := m.states[name]
	if !ok || state.ClipIndex < 0 {
		return
	}

	m.current = name
	player.CrossfadeTo(state.ClipIndex, crossfade)
	player.Playing = true
	player.Loop = state.Loop
	player.Speed = state.Speed
}

// Update evaluates the current state's transitions and takes at most one.
// A finished non-looping state forces the highest-priority transition out
// regardless of conditions, so states like attacks never dead-end.
func (m *StateMachine) Update(player *Player) {
	if !m.bound || m.current == "" {
		return
	}
	state, ok := m.states[m.current]
	if !ok {
		return
	}

	clipEnded := !state.Loop && !player.Playing

	for i := range state.Transitions {
		transition := &state.Transitions[i]

		allPass := clipEnded
		if !allPass {
			allPass = true
			for _, cond := range transition.Conditions {
				if !cond.Evaluate(m.params) {
					allPass = false
					break
				}
			}
		}

		if allPass {
			m.enterState(transition.Target, player, transition.Crossfade)
			return
		}
	}
}
