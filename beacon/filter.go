package beacon

import "math"

// Alpha is the fixed EWMA weight of each new sample, giving a time constant
// of about 100 samples.
const Alpha = 0.01

// Filter is a first-order low-pass filter over raw sensor samples.
//
// The first sample seeds the average exactly so that the beacon reports the
// current reading straight after boot instead of ramping up from zero.
type Filter struct {
	average float64
	count   uint64
}

func NewFilter() *Filter {
	return &Filter{}
}

// Update feeds one raw sample and returns the new reported value.
func (f *Filter) Update(raw float64) uint32 {
	if f.count == 0 {
		f.average = raw
	} else {
		// no fused multiply-add, results must match the recurrence bit for bit
		f.average += float64((raw - f.average) * Alpha)
	}
	f.count++
	return f.Reported()
}

// Reported is the ceiling of the average, clamped to the uint32 range.
// It is 0 until the filter has been seeded.
func (f *Filter) Reported() uint32 {
	if f.count == 0 {
		return 0
	}
	v := math.Ceil(f.average)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

func (f *Filter) Seeded() bool {
	return f.count > 0
}

func (f *Filter) Average() float64 {
	return f.average
}

// Count is the number of samples fed so far.
func (f *Filter) Count() uint64 {
	return f.count
}
