package tuner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		resources SystemResources
		wantWalk  int
		wantHash  int
	}{
		{
			name:      "single core plenty of memory",
			resources: SystemResources{CPUCores: 1, AvailableRAM: 8 << 30},
			wantWalk:  4,
			wantHash:  2,
		},
		{
			name:      "eight cores",
			resources: SystemResources{CPUCores: 8, AvailableRAM: 8 << 30},
			wantWalk:  8,
			wantHash:  16,
		},
		{
			name:      "many cores capped",
			resources: SystemResources{CPUCores: 128, AvailableRAM: 64 << 30},
			wantWalk:  64,
			wantHash:  64,
		},
		{
			name:      "memory bound",
			resources: SystemResources{CPUCores: 16, AvailableRAM: 512 << 20},
			wantWalk:  16,
			wantHash:  6,
		},
		{
			name:      "tiny memory keeps minimum",
			resources: SystemResources{CPUCores: 16, AvailableRAM: 1 << 20},
			wantWalk:  16,
			wantHash:  2,
		},
		{
			name:      "unknown memory",
			resources: SystemResources{CPUCores: 4},
			wantWalk:  4,
			wantHash:  8,
		},
		{
			name:      "zero cores",
			resources: SystemResources{},
			wantWalk:  4,
			wantHash:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.resources)
			assert.Equal(t, tt.wantWalk, got.WalkWorkers, "WalkWorkers")
			assert.Equal(t, tt.wantHash, got.HashWorkers, "HashWorkers")
		})
	}
}

func TestCalculateWithOverrides(t *testing.T) {
	res := SystemResources{CPUCores: 4, AvailableRAM: 8 << 30}

	assert.Equal(t, 3, CalculateWithOverrides(res, 3).HashWorkers)
	assert.Equal(t, 64, CalculateWithOverrides(res, 500).HashWorkers)
	assert.Equal(t, Calculate(res), CalculateWithOverrides(res, 0))
}

func TestDetect(t *testing.T) {
	res, err := Detect()
	if err != nil {
		t.Skipf("resource detection unavailable: %v", err)
	}
	assert.Positive(t, res.CPUCores)
	assert.Positive(t, res.TotalRAM)
}

func TestAuto(t *testing.T) {
	cfg := Auto(0)
	assert.GreaterOrEqual(t, cfg.HashWorkers, minHashWorkers)
	assert.GreaterOrEqual(t, cfg.WalkWorkers, minWalkWorkers)
}
