// Package platform defines the static registry of export targets.
//
// Each Spec carries a platform's container format, pixel box, byte budget,
// optional frame budget, and the degradation ladder the size optimizer walks
// when an encode exceeds the budget. The registry replaces per-platform
// branching: callers look a platform up by identifier and dispatch on the
// descriptor.
package platform
