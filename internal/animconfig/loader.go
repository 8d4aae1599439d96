// Package animconfig loads declarative animation state-machine
// definitions from YAML and builds runtime state machines from them.
package animconfig

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/internal/engine/animation"
	"github.com/Faultbox/midgard-anim/internal/logger"
)

// Document is the on-disk shape of one animation definition.
type Document struct {
	// Name identifies the definition in the registry. Defaults to the
	// file stem when loaded from disk.
	Name string `yaml:"name"`

	DefaultState string                      `yaml:"default_state"`
	States       map[string]StateDoc         `yaml:"states"`
	Procedural   *animation.ProceduralConfig `yaml:"procedural"`
}

// StateDoc declares one state.
type StateDoc struct {
	// Clip is the clip name this state plays. Defaults to the state name.
	Clip        string          `yaml:"clip"`
	Loop        *bool           `yaml:"loop"`
	Speed       *float32        `yaml:"speed"`
	Transitions []TransitionDoc `yaml:"transitions"`
}

// TransitionDoc declares one outgoing transition.
type TransitionDoc struct {
	To         string         `yaml:"to"`
	Crossfade  *float32       `yaml:"crossfade"`
	Priority   int            `yaml:"priority"`
	Conditions []ConditionDoc `yaml:"conditions"`
}

// ConditionDoc declares one parameter test.
type ConditionDoc struct {
	Param string  `yaml:"param"`
	Op    string  `yaml:"op"`
	Value float32 `yaml:"value"`
}

// Parse decodes a YAML document and checks it for structural errors.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing animation config: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile reads and parses a YAML definition from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading animation config %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks cross-references inside the document: the default
// state must exist and every transition target must name a state.
func (d *Document) Validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("animation config has no states")
	}
	if d.DefaultState != "" {
		if _, ok := d.States[d.DefaultState]; !ok {
			return fmt.Errorf("default state %q is not declared", d.DefaultState)
		}
	}
	for name, state := range d.States {
		for _, tr := range state.Transitions {
			if tr.To == "" {
				return fmt.Errorf("state %q has a transition with no target", name)
			}
			if _, ok := d.States[tr.To]; !ok {
				return fmt.Errorf("state %q transitions to undeclared state %q", name, tr.To)
			}
			for _, cond := range tr.Conditions {
				if cond.Param == "" {
					return fmt.Errorf("state %q has a condition with no parameter", name)
				}
			}
		}
	}
	return nil
}

// Build produces a runtime state machine and procedural tuning from the
// document. The machine still needs BindClips before it can drive a
// player.
func (d *Document) Build() (*animation.StateMachine, animation.ProceduralConfig) {
	machine := animation.NewStateMachine()

	for name, stateDoc := range d.States {
		state := animation.State{
			Name:     name,
			ClipName: stateDoc.Clip,
			Loop:     true,
			Speed:    1,
		}
		if state.ClipName == "" {
			state.ClipName = name
		}
		if stateDoc.Loop != nil {
			state.Loop = *stateDoc.Loop
		}
		if stateDoc.Speed != nil {
			state.Speed = *stateDoc.Speed
		}

		for _, trDoc := range stateDoc.Transitions {
			tr := animation.Transition{
				Target:    trDoc.To,
				Crossfade: 0.2,
				Priority:  trDoc.Priority,
			}
			if trDoc.Crossfade != nil {
				tr.Crossfade = *trDoc.Crossfade
			}
			for _, condDoc := range trDoc.Conditions {
				tr.Conditions = append(tr.Conditions, animation.Condition{
					Param:     condDoc.Param,
					Op:        parseOp(condDoc.Op),
					Threshold: condDoc.Value,
				})
			}
			state.Transitions = append(state.Transitions, tr)
		}

		machine.AddState(state)
	}

	if d.DefaultState != "" {
		machine.SetDefaultState(d.DefaultState)
	}

	procedural := animation.DefaultProceduralConfig()
	if d.Procedural != nil {
		procedural = *d.Procedural
	}
	return machine, procedural
}

// parseOp maps an op string to its operator. Unknown strings fall back
// to greater-than, matching the most common condition shape.
func parseOp(s string) animation.Op {
	switch s {
	case "gt", "":
		return animation.OpGreater
	case "lt":
		return animation.OpLess
	case "eq":
		return animation.OpEqual
	case "ne":
		return animation.OpNotEqual
	case "is_true":
		return animation.OpIsTrue
	case "is_false":
		return animation.OpIsFalse
	default:
		logger.Log.Warn("unknown condition op, using gt", zap.String("op", s))
		return animation.OpGreater
	}
}
