// Package energy derives per-frame energy data from decoded PCM audio:
// an RMS envelope and a one-sided magnitude spectrum for every analysis
// frame, queryable by frequency band. It is the data source consumed by the
// beat detectors and threshold logic layered above it; decoding audio into
// PCM samples is outside its scope.
//
// Frames are centered: frame i describes the signal around sample
// i*hop, so the time of frame i is i/FrameRate() seconds. Frames near the
// edges of the signal are zero-padded.
package energy
