// Package compute schedules the data-parallel particle sweeps.
//
// Every pipeline stage iterates particles through [ForEach] or
// [ForRange] on the active [Backend]; the call returns only after all
// chunks finish, which gives the engine its stage barriers. The CPU
// backend fans out over GOMAXPROCS-sized chunks and falls back to a
// plain loop for small bodies; the serial backend exists for
// reproducible runs.
package compute
