// Package optimize implements the adaptive size search at the heart of the
// export engine.
//
// Each run seeds encode parameters from the platform spec and quality
// preset, then repeatedly asks the palette codec for a candidate artifact,
// checks it against the platform byte budget, and walks the platform's
// degradation ladder when it is over. Degrade is pure: parameters are values
// and each ladder step returns a new set. The loop is attempt-bounded so a
// pathological source that defeats the ladder still terminates.
package optimize
