package engine

// Increments returns the reduced rate increments.
func (r *Resampler) Increments() (src, dst, ideal int64) {
	return r.srcIncr, r.dstIncr, r.idealDstIncr
}

// Position returns the history position of the next output sample, in
// input samples.
func (r *Resampler) Position() float64 {
	return (float64(r.index) + float64(r.frac)/float64(r.srcIncr)) / float64(r.PhaseCount())
}

// HistorySamples returns the samples held in the history buffer.
func (r *Resampler) HistorySamples() int {
	return r.history.Samples()
}
