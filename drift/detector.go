package drift

import "sync"

// Detector compares pages against the first page it saw.
type Detector struct {
	threshold int

	mu       sync.Mutex
	baseline uint64
	seeded   bool
}

// NewDetector returns a Detector reporting pages farther than threshold
// bits from the baseline. A threshold of 0 or less disables detection.
func NewDetector(threshold int) *Detector {
	return &Detector{threshold: threshold}
}

// Observe fingerprints page. The first page becomes the baseline and is
// never reported.
func (d *Detector) Observe(page string) (distance int, drifted bool) {
	if d == nil || d.threshold <= 0 {
		return 0, false
	}
	fp := Structure(page)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.seeded {
		d.baseline, d.seeded = fp, true
		return 0, false
	}
	distance = Distance(d.baseline, fp)
	return distance, distance > d.threshold
}

// Reset forgets the baseline.
func (d *Detector) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseline, d.seeded = 0, false
}
