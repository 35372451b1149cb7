// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim/trace"
)

// instance is the running copy of one atomic model, addressed by its index
// in the simulator's arena.
type instance struct {
	path  string
	model *Atomic
	body  body
	last  Time // time of the last transition
	inbox Bag  // messages delivered during the current instant
}

// target is a flattened coupling destination: an atomic input port, or a
// top-level output port when index is topOutput.
type target struct {
	index int
	port  string
}

const topOutput = -1

type source struct {
	index int
	port  string
}

// span is the range of arena indices covered by a subtree.
type span struct {
	first, end int
}

// Simulator is the core object that holds simulation time, the instance
// arena and the event loop of a Parallel-DEVS network.
type Simulator struct {
	top   *Coupled
	clock Time

	instances []*instance
	byPath    map[string]int  // atomic path -> arena index
	spans     map[string]span // model path ("" = top) -> subtree range
	queue     *EventHeap

	routes      map[source][]target // atomic output port -> destinations
	inputRoutes map[string][]target // top-level input port -> destinations
	outbox      Bag                 // top-level outputs of the current instant

	stimulus      StimulusSource
	pending       *Stimulus
	sourceDone    bool
	sourceStalled bool // the source failed during the current cycle

	sinks   []Sink
	trace   *trace.SimulationTrace
	metrics *Metrics

	stopRequested atomic.Bool
}

// NewSimulator flattens the model tree into an arena of atomic instances,
// resolves every coupling chain into direct routes, and schedules each
// instance's first internal event relative to cfg.StartTime.
func NewSimulator(top *Coupled, cfg Config) (*Simulator, error) {
	if top == nil {
		return nil, configErrorf("", "nil top model")
	}
	if cfg.StartTime == Infinity {
		return nil, configErrorf(top.Name(), "start time cannot be infinite")
	}
	s := &Simulator{
		top:         top,
		clock:       cfg.StartTime,
		byPath:      make(map[string]int),
		spans:       make(map[string]span),
		queue:       NewEventHeap(),
		routes:      make(map[source][]target),
		inputRoutes: make(map[string][]target),
		outbox:      NewBag(),
		stimulus:    cfg.Stimulus,
		sinks:       cfg.Sinks,
		trace:       cfg.Trace,
		metrics:     NewMetrics(),
	}

	parents := make(map[string]string)
	coupleds := map[string]*Coupled{"": top}
	s.flatten(top, "", parents, coupleds)

	for i, inst := range s.instances {
		parentPath := parents[inst.path]
		for _, p := range inst.model.OutPorts() {
			var out []target
			s.resolve(coupleds, parents, parentPath, Endpoint{Model: path.Base(inst.path), Port: p.Name()}, &out)
			if len(out) > 0 {
				s.routes[source{index: i, port: p.Name()}] = out
			}
		}
	}
	for _, p := range top.InPorts() {
		var out []target
		s.resolve(coupleds, parents, "", Endpoint{Port: p.Name()}, &out)
		s.inputRoutes[p.Name()] = out
	}

	for i, inst := range s.instances {
		inst.last = s.clock
		ta, err := s.timeAdvance(i)
		if err != nil {
			return nil, err
		}
		s.queue.Schedule(i, s.clock.Add(ta))
	}

	logrus.Debugf("[tick %07d] network %q: %d atomic models, %d routed output ports",
		int64(s.clock), top.Name(), len(s.instances), len(s.routes))
	return s, nil
}

// flatten walks the tree depth-first, appending atomic instances to the arena
// in declaration order.
func (s *Simulator) flatten(m Model, p string, parents map[string]string, coupleds map[string]*Coupled) {
	first := len(s.instances)
	switch m := m.(type) {
	case *Atomic:
		s.byPath[p] = len(s.instances)
		s.instances = append(s.instances, &instance{
			path:  p,
			model: m,
			body:  m.newBody(),
			inbox: NewBag(),
		})
	case *Coupled:
		coupleds[p] = m
		for _, child := range m.children {
			childPath := joinPath(p, child.Name())
			parents[childPath] = p
			s.flatten(child, childPath, parents, coupleds)
		}
	}
	s.spans[p] = span{first: first, end: len(s.instances)}
}

// resolve follows couplings from an endpoint of the coupled model at
// coupledPath until messages land on atomic inputs or the top model's outputs:
// EOC climbs to the parent, IC moves to a sibling, EIC descends into a child.
func (s *Simulator) resolve(coupleds map[string]*Coupled, parents map[string]string, coupledPath string, from Endpoint, out *[]target) {
	c := coupleds[coupledPath]
	for _, dst := range c.Destinations(from) {
		if dst.Model == "" {
			if coupledPath == "" {
				*out = append(*out, target{index: topOutput, port: dst.Port})
				continue
			}
			s.resolve(coupleds, parents, parents[coupledPath], Endpoint{Model: c.Name(), Port: dst.Port}, out)
			continue
		}
		childPath := joinPath(coupledPath, dst.Model)
		if idx, ok := s.byPath[childPath]; ok {
			*out = append(*out, target{index: idx, port: dst.Port})
			continue
		}
		s.resolve(coupleds, parents, childPath, Endpoint{Port: dst.Port}, out)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Clock returns the current global simulation time.
func (s *Simulator) Clock() Time { return s.clock }

// Metrics returns the run counters.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// Trace returns the trace passed in Config, or nil.
func (s *Simulator) Trace() *trace.SimulationTrace { return s.trace }

// Top returns the top-level coupled model.
func (s *Simulator) Top() *Coupled { return s.top }

// Paths returns the path of every atomic model in arena order.
func (s *Simulator) Paths() []string {
	out := make([]string, len(s.instances))
	for i, inst := range s.instances {
		out[i] = inst.path
	}
	return out
}

// State returns the current state of the atomic model at path.
func (s *Simulator) State(p string) (any, bool) {
	idx, ok := s.byPath[p]
	if !ok {
		return nil, false
	}
	return s.instances[idx].body.state(), true
}

// LastEventTime returns when the atomic model at path last transitioned.
func (s *Simulator) LastEventTime(p string) (Time, bool) {
	idx, ok := s.byPath[p]
	if !ok {
		return 0, false
	}
	return s.instances[idx].last, true
}

// NextEventTime returns the next scheduled event of the model at path. For
// a coupled model (including the top model, path "") it is the minimum over
// all its descendants.
func (s *Simulator) NextEventTime(p string) (Time, bool) {
	sp, ok := s.spans[p]
	if !ok {
		return 0, false
	}
	next := Infinity
	for i := sp.first; i < sp.end; i++ {
		next = MinTime(next, s.queue.NextOf(i))
	}
	return next, true
}

// Stop asks Run to return before its next cycle. Safe to call from another goroutine.
func (s *Simulator) Stop() {
	s.stopRequested.Store(true)
}

// NextCycleTime returns the time of the next cycle: the earlier of the next
// internal event and the next pending stimulus. Infinity means quiescence.
func (s *Simulator) NextCycleTime() Time {
	return MinTime(s.queue.PeekTime(), s.peekStimulusTime())
}

// maxSourceRetries bounds how often Run asks a failing stimulus source again
// when nothing else is scheduled.
const maxSourceRetries = 3

// Run executes cycles while the next cycle time is strictly before stop,
// until the network is quiescent, ctx is canceled, or Stop is called.
func (s *Simulator) Run(ctx context.Context, stop Time) error {
	logrus.Infof("[tick %07d] Simulation started, stop at %s", int64(s.clock), stop)
	retries := 0
	for {
		if err := ctx.Err(); err != nil {
			s.flush()
			return err
		}
		if s.stopRequested.Load() {
			logrus.Infof("[tick %07d] Stop requested", int64(s.clock))
			break
		}
		next := s.NextCycleTime()
		if next == Infinity && s.sourceStalled && retries < maxSourceRetries {
			s.sourceStalled = false
			retries++
			continue
		}
		if next == Infinity || next >= stop {
			break
		}
		retries = 0
		if _, err := s.Step(); err != nil {
			return err
		}
	}
	s.flush()
	s.metrics.SimEndedTime = s.clock
	logrus.Infof("[tick %07d] Simulation ended after %d cycles", int64(s.clock), s.metrics.Cycles)
	return nil
}

// Step executes one cycle: advance the clock to the next event, collect the
// imminent models' outputs, route them together with any stimuli due now,
// apply internal/external/confluent transitions, and hand top-level output
// to the sinks once the instant is complete. It returns false without doing
// anything when the network is quiescent.
func (s *Simulator) Step() (bool, error) {
	defer func() { s.sourceStalled = false }()

	tNext := s.queue.PeekTime()
	t := MinTime(tNext, s.peekStimulusTime())
	if t == Infinity {
		return false, nil
	}
	if t < s.clock {
		return false, &SchedulerError{Time: s.clock, Reason: fmt.Sprintf("next event at %s is in the past", t)}
	}
	s.clock = t

	var imminent []int
	if tNext == t {
		imminent = s.queue.Imminent(t)
	}
	isImminent := make(map[int]bool, len(imminent))
	for _, i := range imminent {
		isImminent[i] = true
	}

	// Outputs are collected before any transition, so every delivery of this
	// instant is known before the first model changes state.
	var triggered []int
	for _, i := range imminent {
		out, err := s.output(i)
		if err != nil {
			return false, err
		}
		triggered = s.route(i, out, triggered)
	}
	triggered = s.consumeStimuli(t, triggered)

	touched := append([]int(nil), imminent...)
	for _, i := range triggered {
		if !isImminent[i] {
			touched = append(touched, i)
		}
	}
	slices.Sort(touched)

	for _, i := range touched {
		if err := s.transition(i, isImminent[i]); err != nil {
			return false, err
		}
	}

	// Models scheduled at ta=0 run in later cycles of the same instant; the
	// sinks see the instant once, when the clock is about to move on.
	if s.NextCycleTime() > t {
		s.flush()
	}

	s.metrics.Cycles++
	s.metrics.SimEndedTime = t
	logrus.Debugf("[tick %07d] cycle %d: %d imminent, %d triggered",
		int64(t), s.metrics.Cycles, len(imminent), len(touched)-len(imminent))
	return true, nil
}

// transition applies the transition selected by (imminent, has input),
// clears the instance's inbox and reschedules it.
func (s *Simulator) transition(i int, imminent bool) error {
	inst := s.instances[i]
	t := s.clock
	elapsed := t.Sub(inst.last)
	if elapsed < 0 {
		return &SchedulerError{Time: t, Model: inst.path, Reason: fmt.Sprintf("last event %s is after current time", inst.last)}
	}
	inputs := inst.inbox.Len()

	var kind trace.TransitionKind
	var err error
	switch {
	case imminent && inputs > 0:
		kind = trace.KindConfluent
		err = s.invoke(i, string(kind), func() { inst.body.confluent(elapsed, inst.inbox) })
		s.metrics.ConfluentTransitions++
	case imminent:
		kind = trace.KindInternal
		err = s.invoke(i, string(kind), func() { inst.body.internal() })
		s.metrics.InternalTransitions++
	default:
		kind = trace.KindExternal
		err = s.invoke(i, string(kind), func() { inst.body.external(elapsed, inst.inbox) })
		s.metrics.ExternalTransitions++
	}
	if err != nil {
		return err
	}
	s.metrics.TransitionsPerModel[inst.path]++
	if s.trace.WantsTransitions() {
		s.trace.RecordTransition(trace.TransitionRecord{
			Clock:   int64(t),
			Model:   inst.path,
			Kind:    kind,
			Elapsed: int64(elapsed),
			Inputs:  inputs,
		})
	}

	inst.last = t
	// the model may have kept a reference to the bag, so hand it a fresh one
	inst.inbox = NewBag()
	ta, err := s.timeAdvance(i)
	if err != nil {
		return err
	}
	s.queue.Schedule(i, t.Add(ta))
	return nil
}

func (s *Simulator) timeAdvance(i int) (Time, error) {
	var ta Time
	if err := s.invoke(i, "time advance", func() { ta = s.instances[i].body.timeAdvance() }); err != nil {
		return 0, err
	}
	if ta < 0 {
		return 0, &SchedulerError{Time: s.clock, Model: s.instances[i].path, Reason: fmt.Sprintf("negative time advance %d", int64(ta))}
	}
	return ta, nil
}

// output calls the model's output function and checks the bag against its
// declared output ports.
func (s *Simulator) output(i int) (Bag, error) {
	inst := s.instances[i]
	var out Bag
	if err := s.invoke(i, "output", func() { out = inst.body.output() }); err != nil {
		return nil, err
	}
	for name, vs := range out {
		p, ok := inst.model.outByName[name]
		if !ok {
			if len(vs) == 0 {
				continue
			}
			return nil, &ModelError{Model: inst.path, Time: s.clock, Op: "output", Err: fmt.Errorf("undeclared output port %q", name)}
		}
		for _, v := range vs {
			if err := checkValue(p, v); err != nil {
				return nil, &ModelError{Model: inst.path, Time: s.clock, Op: "output", Err: err}
			}
		}
	}
	return out, nil
}

// invoke runs a call into model code, turning a panic into a ModelError.
func (s *Simulator) invoke(i int, op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ModelError{Model: s.instances[i].path, Time: s.clock, Op: op, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	fn()
	return nil
}

// route copies every message of an output bag to its flattened destinations.
func (s *Simulator) route(i int, out Bag, triggered []int) []int {
	inst := s.instances[i]
	for _, port := range out.PortNames() {
		targets := s.routes[source{index: i, port: port}]
		from := inst.path + "." + port
		for _, v := range out[port] {
			if len(targets) == 0 {
				s.drop(from, v)
				continue
			}
			for _, tg := range targets {
				triggered = s.deliver(from, tg, v, triggered)
			}
		}
	}
	return triggered
}

func (s *Simulator) deliver(from string, tg target, v any, triggered []int) []int {
	s.metrics.MessagesDelivered++
	to := tg.port
	if tg.index == topOutput {
		s.outbox.Add(tg.port, v)
	} else {
		inst := s.instances[tg.index]
		if inst.inbox.Empty() {
			triggered = append(triggered, tg.index)
		}
		inst.inbox.Add(tg.port, v)
		to = inst.path + "." + tg.port
	}
	if s.trace.WantsMessages() {
		s.trace.RecordDelivery(trace.DeliveryRecord{Clock: int64(s.clock), From: from, To: to, Value: fmt.Sprintf("%v", v)})
	}
	return triggered
}

func (s *Simulator) drop(from string, v any) {
	s.metrics.MessagesDropped++
	if s.trace.WantsMessages() {
		s.trace.RecordDrop(trace.DropRecord{Clock: int64(s.clock), From: from, Value: fmt.Sprintf("%v", v)})
	}
}

// flush emits the pending top-level output, if any, stamped with the clock.
func (s *Simulator) flush() {
	if !s.outbox.Empty() {
		s.emit(s.clock)
	}
}

// emit hands the instant's top-level output to every sink and clears it.
func (s *Simulator) emit(t Time) {
	out := s.outbox.Clone()
	s.outbox.clear()
	s.metrics.Emissions++
	for _, sink := range s.sinks {
		if err := sink.Emit(t, out); err != nil {
			s.metrics.SinkErrors++
			logrus.Warnf("[tick %07d] sink %T failed: %v", int64(t), sink, err)
		}
	}
}

// peekStimulus fills the one-stimulus lookahead. Stimuli in the past are
// dropped; a failing source yields no stimulus until the next cycle.
func (s *Simulator) peekStimulus() *Stimulus {
	for s.pending == nil && s.stimulus != nil && !s.sourceDone && !s.sourceStalled {
		st, err := s.stimulus.Next()
		if errors.Is(err, io.EOF) {
			s.sourceDone = true
			break
		}
		if err != nil {
			s.metrics.StimulusErrors++
			s.sourceStalled = true
			logrus.Warnf("[tick %07d] stimulus source unavailable, no input this cycle: %v", int64(s.clock), err)
			break
		}
		if st.Time < s.clock || st.Time == Infinity {
			s.metrics.StimuliDropped++
			logrus.Warnf("[tick %07d] dropping out-of-order stimulus for %q at %s", int64(s.clock), st.Port, st.Time)
			continue
		}
		s.pending = &st
	}
	return s.pending
}

func (s *Simulator) peekStimulusTime() Time {
	if st := s.peekStimulus(); st != nil {
		return st.Time
	}
	return Infinity
}

// consumeStimuli routes every pending stimulus stamped t through the top
// model's external input couplings.
func (s *Simulator) consumeStimuli(t Time, triggered []int) []int {
	for {
		st := s.peekStimulus()
		if st == nil || st.Time != t {
			return triggered
		}
		s.pending = nil

		p, ok := s.top.inByName[st.Port]
		if !ok {
			s.metrics.StimuliDropped++
			logrus.Warnf("[tick %07d] dropping stimulus for unknown input port %q", int64(t), st.Port)
			continue
		}
		if err := checkValue(p, st.Value); err != nil {
			s.metrics.StimuliDropped++
			logrus.Warnf("[tick %07d] dropping stimulus: %v", int64(t), err)
			continue
		}
		s.metrics.StimuliConsumed++
		targets := s.inputRoutes[st.Port]
		if len(targets) == 0 {
			s.drop(st.Port, st.Value)
			continue
		}
		for _, tg := range targets {
			triggered = s.deliver(st.Port, tg, st.Value, triggered)
		}
	}
}
