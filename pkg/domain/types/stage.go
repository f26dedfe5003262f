package types

// Stage is a column of the recruitment pipeline
type Stage string

const (
	StageNewApplicants Stage = "New Applicants"
	StageScreening     Stage = "Screening"
	StageInterview     Stage = "Interview"
	StageOffer         Stage = "Offer"
	StageHired         Stage = "Hired"
	StageRejected      Stage = "Rejected"
)

// InitialStage is where a candidate lands on first appearance on a board
const InitialStage = StageNewApplicants

// AllStages returns the fixed, ordered stage set
func AllStages() []Stage {
	return []Stage{
		StageNewApplicants,
		StageScreening,
		StageInterview,
		StageOffer,
		StageHired,
		StageRejected,
	}
}

// IsValid checks if the stage belongs to the fixed stage set
func (s Stage) IsValid() bool {
	switch s {
	case StageNewApplicants,
		StageScreening,
		StageInterview,
		StageOffer,
		StageHired,
		StageRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is expected from s.
// Terminal stages do not block moves.
func (s Stage) IsTerminal() bool {
	return s == StageHired || s == StageRejected
}

func (s Stage) String() string {
	return string(s)
}
