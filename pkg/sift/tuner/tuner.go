// Package tuner sizes sift's worker pools from detected CPU and memory.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the free RAM in bytes, possibly estimated.
	AvailableRAM int64
}

// Pool limits.
const (
	maxWorkers     = 64
	minWalkWorkers = 4
	minHashWorkers = 2

	// hashWorkerMemory is the budget reserved per hashing worker: one read
	// chunk plus classifier header and bookkeeping.
	hashWorkerMemory = 4 << 20

	// memoryFraction of available RAM is the most the hash pool may claim.
	memoryFraction = 0.05
)

// Config holds pool sizes for a walk.
type Config struct {
	// WalkWorkers is the number of directory-reading goroutines.
	WalkWorkers int

	// HashWorkers bounds concurrent fingerprint and classify calls.
	HashWorkers int
}

// Calculate derives pool sizes from resources.
//
// Directory reading is metadata-bound and gets max(NumCPU, 4). Hashing is
// a mix of disk reads and CPU work and gets NumCPU*2, reduced when
// available memory cannot hold that many workers. Both are capped at 64.
func Calculate(resources SystemResources) Config {
	cores := max(resources.CPUCores, 1)

	walk := min(max(cores, minWalkWorkers), maxWorkers)

	hash := min(max(cores*2, minHashWorkers), maxWorkers)
	if resources.AvailableRAM > 0 {
		byMemory := int(float64(resources.AvailableRAM) * memoryFraction / hashWorkerMemory)
		hash = max(min(hash, byMemory), minHashWorkers)
	}

	return Config{WalkWorkers: walk, HashWorkers: hash}
}

// CalculateWithOverrides applies a positive hashOverride on top of
// Calculate. The override is still capped at 64.
func CalculateWithOverrides(resources SystemResources, hashOverride int) Config {
	cfg := Calculate(resources)
	if hashOverride > 0 {
		cfg.HashWorkers = min(hashOverride, maxWorkers)
	}
	return cfg
}

// Auto detects resources and applies hashOverride. Detection failures fall
// back to fixed defaults.
func Auto(hashOverride int) Config {
	resources, err := Detect()
	if err != nil {
		resources = fallbackResources()
	}
	return CalculateWithOverrides(resources, hashOverride)
}
