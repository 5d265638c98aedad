// Package frameplan computes temporal resampling decisions under hard frame
// budgets.
//
// Plan handles the common case: cap a requested output rate so the total
// output frame count never exceeds a platform's budget. PlanStride serves
// frame-extraction consumers (sprite sheets) that need an exact every-Nth
// selection instead of a retimed stream.
package frameplan
