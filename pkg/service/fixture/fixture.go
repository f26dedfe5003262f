package fixture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML document loaded into a fixture source
type Seed struct {
	Candidates []SeedCandidate `yaml:"candidates"`
	Jobs       []SeedJob       `yaml:"jobs"`
}

type SeedCandidate struct {
	Name         string   `yaml:"name"`
	Email        string   `yaml:"email"`
	Phone        string   `yaml:"phone"`
	Location     string   `yaml:"location"`
	PrimarySkill string   `yaml:"primary_skill"`
	Skills       []string `yaml:"skills"`
	Status       string   `yaml:"status"`
}

type SeedJob struct {
	Title        string `yaml:"title"`
	Company      string `yaml:"company"`
	Location     string `yaml:"location"`
	Status       string `yaml:"status"`
	Description  string `yaml:"description"`
	Requirements string `yaml:"requirements"`
	Salary       string `yaml:"salary"`
}

// Source is an in-memory stand in for the CRM. Synced records become
// readable through Fetch*, so the dashboard works without a CRM account.
type Source struct {
	mu         sync.Mutex
	seq        int
	candidates []*model.Candidate
	jobs       []*model.Job
	now        func() time.Time
}

var _ interfaces.DataSource = &Source{}

func New() *Source {
	return &Source{now: time.Now}
}

// Load reads a YAML seed file into a new source
func Load(path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixture file", goerr.V("path", path))
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse fixture file", goerr.V("path", path))
	}

	src := New()
	if err := src.Seed(&seed); err != nil {
		return nil, goerr.Wrap(err, "invalid fixture file", goerr.V("path", path))
	}
	return src, nil
}

// Seed adds the seeded records as if they had been synced earlier
func (s *Source) Seed(seed *Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for i, sc := range seed.Candidates {
		c := &model.Candidate{
			Name:         sc.Name,
			Email:        sc.Email,
			Phone:        sc.Phone,
			Location:     sc.Location,
			PrimarySkill: sc.PrimarySkill,
			Skills:       sc.Skills,
			Status:       types.CandidateStatus(sc.Status).Normalize(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if c.Skills == nil {
			c.Skills = []string{}
		}
		if err := c.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed candidate", goerr.V("index", i))
		}
		s.storeCandidate(c)
	}

	for i, sj := range seed.Jobs {
		j := &model.Job{
			Title:        sj.Title,
			Company:      sj.Company,
			Location:     sj.Location,
			Status:       types.JobStatus(sj.Status).Normalize(),
			Description:  sj.Description,
			Requirements: sj.Requirements,
			Salary:       sj.Salary,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := j.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed job", goerr.V("index", i))
		}
		s.storeJob(j)
	}
	return nil
}

func (s *Source) Name() string { return "fixture" }

func (s *Source) nextID() string {
	s.seq++
	return fmt.Sprintf("fx-%d", s.seq)
}

// storeCandidate upserts c by remote id. Caller must hold mu.
func (s *Source) storeCandidate(c *model.Candidate) string {
	if c.RemoteID != "" {
		for i, existing := range s.candidates {
			if existing.RemoteID == c.RemoteID {
				stored := c.Clone()
				stored.ID = types.CandidateID(c.RemoteID)
				stored.CreatedAt = existing.CreatedAt
				s.candidates[i] = stored
				return c.RemoteID
			}
		}
	}

	id := s.nextID()
	stored := c.Clone()
	stored.ID = types.CandidateID(id)
	stored.RemoteID = id
	s.candidates = append(s.candidates, stored)
	return id
}

// storeJob upserts j by remote id. Caller must hold mu.
func (s *Source) storeJob(j *model.Job) string {
	if j.RemoteID != "" {
		for i, existing := range s.jobs {
			if existing.RemoteID == j.RemoteID {
				stored := j.Clone()
				stored.ID = types.JobID(j.RemoteID)
				stored.CreatedAt = existing.CreatedAt
				s.jobs[i] = stored
				return j.RemoteID
			}
		}
	}

	id := s.nextID()
	stored := j.Clone()
	stored.ID = types.JobID(id)
	stored.RemoteID = id
	s.jobs = append(s.jobs, stored)
	return id
}

func (s *Source) FetchCandidates(ctx context.Context, tenantID types.TenantID) []*model.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c.Clone())
	}
	return out
}

func (s *Source) FetchJobs(ctx context.Context, tenantID types.TenantID) []*model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	return out
}

// SyncCandidates stores every valid candidate. A candidate without an email
// is rejected the way the CRM rejects a contact without one.
func (s *Source) SyncCandidates(ctx context.Context, tenantID types.TenantID, candidates []*model.Candidate) ([]*model.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*model.SyncResult, len(candidates))
	for i, c := range candidates {
		r := &model.SyncResult{EntityName: c.Name, EntityID: c.ID.String()}
		switch {
		case ctx.Err() != nil:
			r.Error = "sync cancelled before this item started"
		case strings.TrimSpace(c.Email) == "":
			r.Error = "email is required"
		default:
			r.Success = true
			r.RemoteID = s.storeCandidate(c)
		}
		results[i] = r
	}
	return results, nil
}

func (s *Source) SyncJobs(ctx context.Context, tenantID types.TenantID, jobs []*model.Job) ([]*model.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*model.SyncResult, len(jobs))
	for i, j := range jobs {
		r := &model.SyncResult{EntityName: j.Title, EntityID: j.ID.String()}
		switch {
		case ctx.Err() != nil:
			r.Error = "sync cancelled before this item started"
		case strings.TrimSpace(j.Title) == "":
			r.Error = "title is required"
		default:
			r.Success = true
			r.RemoteID = s.storeJob(j)
		}
		results[i] = r
	}
	return results, nil
}
