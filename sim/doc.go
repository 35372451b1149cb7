// Package sim provides the Parallel-DEVS simulation core: atomic models,
// hierarchical coupled models and the simulator that drives them.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - atomic.go: the Behavior[S] contract (time advance, internal, external,
//     confluent, output) and how a definition becomes a running instance
//   - coupled.go: coupled models, their validation and one-level coupling lookup
//   - simulator.go: the cycle (imminent set, outputs, routing, transitions, sinks)
//
// # Architecture
//
// Model definitions are immutable. NewSimulator flattens a *Coupled tree into
// an arena of atomic instances addressed by index, resolves every coupling
// chain into direct index-to-index routes, and schedules every instance in an
// EventHeap ordered by (next event time, arena index). Instances are visited
// in depth-first declaration order whenever several act in the same instant.
//
// Sub-packages:
//   - sim/trace/: transition, delivery and drop records
//   - sim/network/: YAML network descriptions and the model-kind registry
//   - sim/library/: reusable atomic models (generators, passthroughs, the light-following robot, device adapters)
//   - sim/workload/: stimulus sources (text recordings, seeded synthetic streams)
//   - sim/store/: SQLite recording of emitted outputs
//
// sim/library registers its model kinds with sim/network from init().
//
// # Boundaries
//
// The environment talks to a run through two small interfaces:
//   - StimulusSource: timestamped messages for the top model's input ports
//   - Sink: the top model's output, once per instant
//
// Failures on either side are logged and counted; the run continues.
// Configuration errors, model contract violations and scheduler invariant
// violations are returned as *ConfigError, *ModelError and *SchedulerError.
package sim
