package memory

import (
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	candidate *candidateRepository
	job       *jobRepository
	board     *boardRepository
	tokens    *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		candidate: newCandidateRepository(),
		job:       newJobRepository(),
		board:     newBoardRepository(),
		tokens:    newTokenStore(),
	}
}

func (m *Memory) Candidate() interfaces.CandidateRepository {
	return m.candidate
}

func (m *Memory) Job() interfaces.JobRepository {
	return m.job
}

func (m *Memory) Board() interfaces.BoardRepository {
	return m.board
}

func (m *Memory) Close() error {
	return nil
}
