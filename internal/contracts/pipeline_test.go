package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_ShortName(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageFundamentals, "S0"},
		{StageUniverse, "S1"},
		{StageTechnical, "S2"},
		{StageRisk, "S2"},
		{StageScoring, "S3"},
		{StageSectors, "S4"},
		{Stage("bogus"), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.ShortName())
		})
	}
}
