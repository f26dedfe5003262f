package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

func TestParseCandidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.CandidateStatus
		wantErr bool
	}{
		{name: "available", input: "available", want: types.CandidateStatusAvailable},
		{name: "in process", input: "in_process", want: types.CandidateStatusInProcess},
		{name: "placed", input: "placed", want: types.CandidateStatusPlaced},
		{name: "inactive", input: "inactive", want: types.CandidateStatusInactive},
		{name: "invalid", input: "hired", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseCandidateStatus(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestCandidateStatus_Normalize(t *testing.T) {
	gt.Value(t, types.CandidateStatus("").Normalize()).Equal(types.CandidateStatusAvailable)
	gt.Value(t, types.CandidateStatusPlaced.Normalize()).Equal(types.CandidateStatusPlaced)
}

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.JobStatus
		wantErr bool
	}{
		{name: "open", input: "open", want: types.JobStatusOpen},
		{name: "filled", input: "filled", want: types.JobStatusFilled},
		{name: "archived", input: "archived", want: types.JobStatusArchived},
		{name: "invalid", input: "closed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseJobStatus(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestIDs(t *testing.T) {
	gt.Value(t, types.TenantID("").Validate()).NotNil()
	gt.NoError(t, types.TenantID("12345").Validate())

	c1, c2 := types.NewCandidateID(), types.NewCandidateID()
	gt.Value(t, c1).NotEqual(c2)
	gt.NoError(t, c1.Validate())
	gt.NoError(t, types.NewJobID().Validate())
	gt.Value(t, types.JobID("").Validate()).NotNil()
}
