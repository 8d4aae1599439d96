// animtool is a CLI utility for validating and exercising declarative
// animation state-machine definitions.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-anim/internal/animconfig"
	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/engine/animation"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.InitConsole(cfg.Logging.Level)
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate", "check":
		cmdValidate(args)
	case "show":
		cmdShow(args)
	case "sim":
		cmdSim(cfg, args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`animtool - animation state-machine utility

Usage:
  animtool <command> [options]

Commands:
  validate <file-or-dir>       Check definition files for errors
  show <file>                  Print a definition's states and transitions
  sim <file> [options]         Run a definition against synthetic clips
  init [path]                  Write a starter definition file

Examples:
  animtool validate animations/
  animtool show animations/humanoid.yaml
  animtool sim animations/humanoid.yaml -float speed=2.5 -bool attacking=true@1.5
  animtool init animations/humanoid.yaml`)
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: animtool validate <file-or-dir>")
		os.Exit(1)
	}

	info, err := os.Stat(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			paths = append(paths, filepath.Join(args[0], entry.Name()))
		}
	} else {
		paths = []string{args[0]}
	}

	failed := 0
	for _, path := range paths {
		doc, err := animconfig.ParseFile(path)
		if err != nil {
			fmt.Printf("FAIL  %s\n      %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("OK    %s (%d states)\n", path, len(doc.States))
	}

	fmt.Printf("\n%d checked, %d failed\n", len(paths), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func cmdShow(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: animtool show <file>")
		os.Exit(1)
	}

	doc, err := animconfig.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Definition: %s\n", docName(doc, args[0]))
	fmt.Printf("Default:    %s\n", doc.DefaultState)
	fmt.Println()

	_, procedural := doc.Build()

	for name, state := range doc.States {
		clip := state.Clip
		if clip == "" {
			clip = name
		}
		loop := true
		if state.Loop != nil {
			loop = *state.Loop
		}
		speed := float32(1)
		if state.Speed != nil {
			speed = *state.Speed
		}
		fmt.Printf("state %s (clip=%s loop=%t speed=%g)\n", name, clip, loop, speed)
		for _, tr := range state.Transitions {
			crossfade := float32(0.2)
			if tr.Crossfade != nil {
				crossfade = *tr.Crossfade
			}
			fmt.Printf("  -> %s  crossfade=%g priority=%d\n", tr.To, crossfade, tr.Priority)
			for _, cond := range tr.Conditions {
				fmt.Printf("       %s %s %g\n", cond.Param, condOp(cond.Op), cond.Value)
			}
		}
	}

	fmt.Println()
	fmt.Printf("procedural: foot_ik=%t lean=%t attack_tilt_max=%g\n",
		procedural.FootIK, procedural.Lean, procedural.AttackTiltMax)
}

func condOp(op string) string {
	if op == "" {
		return "gt"
	}
	return op
}

func docName(doc *animconfig.Document, path string) string {
	if doc.Name != "" {
		return doc.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// paramFlags collects repeated name=value[@time] flag occurrences.
type paramFlags []string

func (p *paramFlags) String() string { return strings.Join(*p, ",") }

func (p *paramFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value[@time], got %q", v)
	}
	*p = append(*p, v)
	return nil
}

// paramEvent is one scripted parameter change, applied once simulated
// time reaches At.
type paramEvent struct {
	At     float32
	Name   string
	IsBool bool
	FVal   float32
	BVal   bool
}

func parseParamEvent(pair string, isBool bool) (paramEvent, error) {
	name, rest, _ := strings.Cut(pair, "=")
	raw, at := rest, ""
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		raw, at = rest[:i], rest[i+1:]
	}

	ev := paramEvent{Name: name, IsBool: isBool}
	if at != "" {
		t, err := strconv.ParseFloat(at, 32)
		if err != nil {
			return ev, fmt.Errorf("bad time in %q", pair)
		}
		ev.At = float32(t)
	}

	if isBool {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return ev, fmt.Errorf("bad bool value in %q", pair)
		}
		ev.BVal = v
	} else {
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return ev, fmt.Errorf("bad float value in %q", pair)
		}
		ev.FVal = float32(v)
	}
	return ev, nil
}

func cmdSim(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	duration := fs.Float64("duration", float64(cfg.Simulation.Duration), "Simulated seconds")
	tickRate := fs.Float64("tick", float64(cfg.Simulation.TickRate), "Updates per second")
	clipLength := fs.Float64("clip-length", 1.0, "Duration of each synthetic clip")
	var floats, bools paramFlags
	fs.Var(&floats, "float", "Set a float parameter (name=value[@time], repeatable)")
	fs.Var(&bools, "bool", "Set a bool parameter (name=true|false[@time], repeatable)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: animtool sim <file> [options]")
		os.Exit(1)
	}

	doc, err := animconfig.ParseFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	machine, _ := doc.Build()

	// One synthetic clip per distinct clip name referenced by the states.
	seen := make(map[string]bool)
	var clips []animation.Clip
	for name, state := range doc.States {
		clip := state.Clip
		if clip == "" {
			clip = name
		}
		if !seen[clip] {
			seen[clip] = true
			clips = append(clips, animation.Clip{Name: clip, Duration: float32(*clipLength)})
		}
	}
	if !machine.BindClips(clips) {
		fmt.Fprintln(os.Stderr, "Error: unresolved clip names")
		os.Exit(1)
	}

	var events []paramEvent
	for _, pair := range floats {
		ev, err := parseParamEvent(pair, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		events = append(events, ev)
	}
	for _, pair := range bools {
		ev, err := parseParamEvent(pair, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	// A root-only rig is enough to drive playback timing.
	skel := &animation.Skeleton{
		Joints: []animation.Joint{{
			Name:          "Root",
			ParentIndex:   -1,
			InverseBind:   math.Identity(),
			LocalRotation: math.QuatIdentity(),
			LocalScale:    math.Vec3{X: 1, Y: 1, Z: 1},
		}},
	}

	player := animation.NewPlayer()
	dt := float32(1.0 / *tickRate)
	steps := int(float32(*duration) / dt)

	fmt.Printf("simulating %s for %gs at %g Hz\n", docName(doc, fs.Arg(0)), *duration, *tickRate)
	last := machine.CurrentState()
	fmt.Printf("t=0.000  enter %s\n", last)

	next := 0
	for i := 0; i < steps; i++ {
		t := float32(i) * dt
		for next < len(events) && events[next].At <= t {
			ev := events[next]
			if ev.IsBool {
				machine.SetBool(ev.Name, ev.BVal)
			} else {
				machine.SetFloat(ev.Name, ev.FVal)
			}
			next++
		}

		machine.Update(player)
		player.Update(skel, clips, dt)
		if current := machine.CurrentState(); current != last {
			fmt.Printf("t=%.3f  %s -> %s (blend %.2f)\n",
				t, last, current, player.BlendFactor)
			last = current
		}
	}

	fmt.Printf("final: state=%s time=%.3f playing=%t blend=%.2f\n",
		last, player.Time, player.Playing, player.BlendFactor)
}

const starterDefinition = `name: humanoid
default_state: idle

states:
  idle:
    clip: idle
    transitions:
      - to: walk
        crossfade: 0.2
        conditions:
          - param: speed
            op: gt
            value: 0.1

  walk:
    clip: walk
    transitions:
      - to: idle
        crossfade: 0.2
        conditions:
          - param: speed
            op: lt
            value: 0.1
      - to: attack
        crossfade: 0.1
        priority: 5
        conditions:
          - param: attacking
            op: is_true

  attack:
    clip: attack
    loop: false
    transitions:
      - to: idle
        crossfade: 0.2

procedural:
  foot_ik: true
  lean: true
  forward_lean_factor: 0.015
  forward_lean_max: 0.18
  lateral_lean_factor: 0.06
  lateral_lean_max: 0.15
  attack_tilt_max: 0.4
  attack_tilt_cooldown: 0.5
`

func cmdInit(args []string) {
	path := "animations/humanoid.yaml"
	if len(args) >= 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, []byte(starterDefinition), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", path)
}
