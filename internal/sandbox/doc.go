// Package sandbox runs the launcher demonstration: a fixed set of named
// launchers, each spawned once and joined in reverse construction order.
package sandbox
