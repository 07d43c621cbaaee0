// Package sim provides the core of the minikern simulator: a tick-driven CPU
// scheduler and a demand-paging memory simulator with LRU replacement.
//
// # Reading Guide
//
// Start with these files:
//   - process.go: Process control block and lifecycle states (Ready → Running → Terminated)
//   - scheduler.go: Dispatch modes and one SelectionPolicy per mode
//   - kernel.go: The Kernel instance, process operations and the Tick state machine
//   - paging.go: Page access (hit, fault, LRU eviction) over frames.go and page_table.go
//
// # Determinism
//
// Every selection is a linear scan over table or frame indices. Index order
// breaks ties (lowest slot for FCFS and Priority arrivals, lowest frame for
// equal LRU timestamps), and that order is part of the observable behaviour.
//
// Synthetic batches (synthetic.go) draw processes and page references from a
// PartitionedRNG (rng.go), one seeded stream per subsystem.
//
// # Clocks
//
// The scheduler tick (advanced by Kernel.Tick) and the paging access clock
// (advanced by Kernel.AccessPage) are independent counters.
//
// # Decision Tracing
//
// sim/trace records dispatch and access decisions when enabled through
// Kernel.EnableTrace; it has no dependency on this package.
package sim
