package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// Candidate is a person tracked by the local store, mirrored as a CRM contact
type Candidate struct {
	ID           types.CandidateID     `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	Location     string                `json:"location"`
	PrimarySkill string                `json:"primarySkill"`
	Skills       []string              `json:"skills"`
	Status       types.CandidateStatus `json:"status"`
	Notes        string                `json:"notes"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	RemoteID     string                `json:"remoteId,omitempty"`
}

// IsSynced reports whether the candidate has a CRM contact id
func (c *Candidate) IsSynced() bool {
	return c.RemoteID != ""
}

func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrInvalidCandidate, "name is required", goerr.V(CandidateIDKey, c.ID))
	}
	if c.Status != "" && !c.Status.IsValid() {
		return goerr.Wrap(ErrInvalidCandidate, "unknown status",
			goerr.V(CandidateIDKey, c.ID), goerr.V("status", c.Status))
	}
	return nil
}

// Clone returns a deep copy of the candidate
func (c *Candidate) Clone() *Candidate {
	copied := *c
	if c.Skills != nil {
		copied.Skills = make([]string, len(c.Skills))
		copy(copied.Skills, c.Skills)
	}
	return &copied
}

// Initials returns the avatar initials shown by the dashboard
func (c *Candidate) Initials() string {
	parts := strings.Fields(c.Name)
	var b strings.Builder
	for i, p := range parts {
		if i > 1 {
			break
		}
		b.WriteString(strings.ToUpper(string([]rune(p)[0])))
	}
	return b.String()
}

// MatchesQuery reports whether q occurs in the name, email or one of the skills
func (c *Candidate) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.PrimarySkill), q) {
		return true
	}
	for _, s := range c.Skills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
