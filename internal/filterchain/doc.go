// Package filterchain translates export intent into the external encoder's
// textual filter-graph syntax.
//
// Build is a pure function from validated Options to an ordered stage list:
// chroma key removal, spill suppression with fixed color correction, an
// optional pre-scale source crop, scale-to-fill plus exact center crop (never
// letterboxed), and a temporal resample stage last. The rendered text is
// passed to the encoder verbatim, so stage syntax here is a wire-level
// compatibility contract.
package filterchain
