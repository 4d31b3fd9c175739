// Package supervisor brings a local Ollama daemon and the required model to a
// ready state at startup, and stops the daemon again on exit if it was started
// here. It is structured into small files by concern:
//
//   - orchestrator.go: Orchestrator, the EnsureReady sequence and Shutdown.
//   - probe.go: CommandProbe, PATH lookup of the daemon executable.
//   - process.go: DaemonProcess, spawning `ollama serve` in its own process group.
//   - sysproc_*.go: platform specific process group signalling.
//   - health.go: HealthChecker, bounded readiness polling of the control API.
//   - catalog.go: ModelCatalog, installed model queries and `ollama pull`.
//   - config.go: Config and package defaults.
//   - types.go: HealthState, Phase, DaemonHandle, PullOutcome.
//   - errors.go: setup error types and Is* helpers.
//   - events.go: lifecycle events for console rendering and tests.
//   - metrics.go: Prometheus collectors.
//
// Everything here is synchronous: EnsureReady blocks until the sequence ends,
// and the only goroutine started is the reaper of a spawned daemon.
package supervisor
