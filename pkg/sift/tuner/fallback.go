package tuner

import "runtime"

// defaultTotalRAM is assumed when memory cannot be detected.
const defaultTotalRAM = 8 << 30

func fallbackResources() SystemResources {
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     defaultTotalRAM,
		AvailableRAM: defaultTotalRAM / 2,
	}
}
