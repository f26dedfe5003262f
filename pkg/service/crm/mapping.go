package crm

import (
	"strings"
	"time"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// UnknownCompany is shown for deals carrying no company name
const UnknownCompany = "Unknown Company"

// dealCloseWindow is how far ahead a new deal's close date is set
const dealCloseWindow = 90 * 24 * time.Hour

// ContactProperties are requested when reading contacts
var ContactProperties = []string{
	"email", "firstname", "lastname", "phone", "city", "jobtitle", "skills", "candidate_status", "createdate",
}

// DealProperties are requested when reading deals
var DealProperties = []string{
	"dealname", "amount", "dealstage", "pipeline", "closedate", "company_name",
	"job_location", "job_requirements", "job_description", "createdate",
}

// SplitName splits a full name into first name and the remaining words
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// ContactFromCandidate builds the contact payload for a candidate
func ContactFromCandidate(c *model.Candidate) map[string]string {
	first, last := SplitName(c.Name)
	return map[string]string{
		"email":            c.Email,
		"firstname":        first,
		"lastname":         last,
		"phone":            c.Phone,
		"city":             c.Location,
		"jobtitle":         c.PrimarySkill,
		"candidate_status": c.Status.Normalize().String(),
		"skills":           strings.Join(c.Skills, ", "),
	}
}

// CandidateFromContact normalizes a contact into the local candidate shape
func CandidateFromContact(obj *model.RemoteObject) *model.Candidate {
	name := strings.TrimSpace(obj.Property("firstname") + " " + obj.Property("lastname"))

	var skills []string
	for _, s := range strings.Split(obj.Property("skills"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if skills == nil {
		skills = []string{}
	}

	status := types.CandidateStatus(obj.Property("candidate_status"))
	if !status.IsValid() {
		status = types.CandidateStatusAvailable
	}

	createdAt := obj.CreatedAt
	if t, err := time.Parse(time.RFC3339, obj.Property("createdate")); err == nil {
		createdAt = t
	}

	return &model.Candidate{
		ID:           types.CandidateID(obj.ID),
		Name:         name,
		Email:        obj.Property("email"),
		Phone:        obj.Property("phone"),
		Location:     obj.Property("city"),
		PrimarySkill: obj.Property("jobtitle"),
		Skills:       skills,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    obj.UpdatedAt,
		RemoteID:     obj.ID,
	}
}

// DealFromJob builds the deal payload for a job. Open jobs land in the
// open deal stage, everything else in the closed one.
func DealFromJob(j *model.Job, p config.PipelineSettings, now time.Time) map[string]string {
	stage := p.ClosedDealStage
	if j.Status.Normalize() == types.JobStatusOpen {
		stage = p.OpenDealStage
	}

	return map[string]string{
		"dealname":         j.Title,
		"amount":           j.Salary,
		"dealstage":        stage,
		"pipeline":         "default",
		"closedate":        now.Add(dealCloseWindow).UTC().Format(time.RFC3339),
		"company_name":     j.Company,
		"job_location":     j.Location,
		"job_requirements": j.Requirements,
		"job_description":  j.Description,
	}
}

// JobFromDeal normalizes a deal into the local job shape
func JobFromDeal(obj *model.RemoteObject, p config.PipelineSettings) *model.Job {
	company := obj.Property("company_name")
	if company == "" {
		company = UnknownCompany
	}

	status := types.JobStatusOpen
	if obj.Property("dealstage") == p.ClosedDealStage {
		status = types.JobStatusFilled
	}

	createdAt := obj.CreatedAt
	if t, err := time.Parse(time.RFC3339, obj.Property("createdate")); err == nil {
		createdAt = t
	}

	return &model.Job{
		ID:           types.JobID(obj.ID),
		Title:        obj.Property("dealname"),
		Company:      company,
		Location:     obj.Property("job_location"),
		Status:       status,
		Description:  obj.Property("job_description"),
		Requirements: obj.Property("job_requirements"),
		Salary:       obj.Property("amount"),
		CreatedAt:    createdAt,
		UpdatedAt:    obj.UpdatedAt,
		RemoteID:     obj.ID,
	}
}

// StageNote is the note body recorded when a candidate changes stage
func StageNote(from, to types.Stage) string {
	return "Candidate moved from " + from.String() + " to " + to.String()
}
