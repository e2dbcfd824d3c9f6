// Package media holds the value types of a normalization run (target
// profile, source video, segment, crop rectangle) and the pure arithmetic
// that derives segments and crop geometry from them.
package media
