// Package beat detects beats in framed audio energy data.
//
// An acoustic beat is a sudden rise of the sound energy inside a frequency
// band. Both detectors walk the frames of a Source in order and report, one
// frame at a time, whether the frame's band energy stands out against its
// recent past:
//
//   - PeakDecay compares each frame against a decaying peak threshold. It is
//     cheap and works well on sparse, pronounced beats.
//   - Adaptive compares each frame against a statistical baseline of the
//     previous frames, scaled by the energy variance of that history. It
//     copes better with noisy material and loudness changes, and can use a
//     moving median instead of the mean for a baseline that is robust to
//     outlier frames.
//
// Detectors are forward-only iterators: Next examines the current frame,
// advances, and reports the verdict for the frame just consumed.
package beat
