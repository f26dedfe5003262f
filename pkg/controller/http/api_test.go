package http_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/service/fixture"
)

type stageColumn struct {
	Stage        string   `json:"stage"`
	CandidateIDs []string `json:"candidateIds"`
}

type board struct {
	JobID  string        `json:"jobId"`
	Stages []stageColumn `json:"stages"`
}

func (b board) in(stage string) []string {
	for _, c := range b.Stages {
		if c.Stage == stage {
			return c.CandidateIDs
		}
	}
	return nil
}

type moveResponse struct {
	Board     board                   `json:"board"`
	Moved     bool                    `json:"moved"`
	CRMSynced bool                    `json:"crmSynced"`
	CRM       *model.StageMoveResult  `json:"crm"`
	Message   string                  `json:"message"`
	Event     *model.StageChangeEvent `json:"event"`
}

type syncResponse struct {
	Source    string              `json:"source"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []*model.SyncResult `json:"results"`
}

func (e *testEnv) createCandidate(t *testing.T, body map[string]any) *model.Candidate {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/candidates", body)
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	c := decode[model.Candidate](t, w)
	return &c
}

func (e *testEnv) createJob(t *testing.T, body map[string]any) *model.Job {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/jobs", body)
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	j := decode[model.Job](t, w)
	return &j
}

func TestCandidateAPI(t *testing.T) {
	env := newEnv(t, withoutCRM())

	created := env.createCandidate(t, map[string]any{
		"name":         "  Aiko Tanaka ",
		"email":        "aiko@example.com",
		"primarySkill": "Go",
		"skills":       []string{"Go", "", "Kubernetes"},
	})
	gt.String(t, created.ID.String()).NotEqual("")
	gt.Value(t, created.Name).Equal("Aiko Tanaka")
	gt.Value(t, created.Skills).Equal([]string{"Go", "Kubernetes"})
	env.createCandidate(t, map[string]any{"name": "Ken Sato", "email": "ken@example.com"})

	t.Run("get", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/candidates/"+created.ID.String(), nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[model.Candidate](t, w).Email).Equal("aiko@example.com")
	})

	t.Run("search", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/candidates?q=kubernetes", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		found := decode[[]model.Candidate](t, w)
		gt.Array(t, found).Length(1).Required()
		gt.Value(t, found[0].ID).Equal(created.ID)

		w = env.do(t, http.MethodGet, "/api/candidates", nil)
		gt.Array(t, decode[[]model.Candidate](t, w)).Length(2)
	})

	t.Run("update", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/candidates/"+created.ID.String(), map[string]any{
			"name":   "Aiko Tanaka",
			"email":  "aiko@example.org",
			"status": "in_process",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		updated := decode[model.Candidate](t, w)
		gt.Value(t, updated.ID).Equal(created.ID)
		gt.Value(t, updated.Email).Equal("aiko@example.org")
	})

	t.Run("invalid", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/candidates", map[string]any{"email": "noname@example.com"})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/candidates/"+created.ID.String(), nil)
		gt.Value(t, w.Code).Equal(http.StatusNoContent)

		w = env.do(t, http.MethodGet, "/api/candidates/"+created.ID.String(), nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestJobAPI(t *testing.T) {
	env := newEnv(t, withoutCRM())

	job := env.createJob(t, map[string]any{"title": "Backend Engineer", "location": "Tokyo"})
	gt.Value(t, job.Company).Equal("NOBA Experts")

	w := env.do(t, http.MethodGet, "/api/jobs?q=tokyo", nil)
	gt.Array(t, decode[[]model.Job](t, w)).Length(1)

	w = env.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{"title": "Staff Engineer", "status": "filled"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, decode[model.Job](t, w).Title).Equal("Staff Engineer")

	w = env.do(t, http.MethodPost, "/api/jobs", map[string]any{"title": " "})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = env.do(t, http.MethodDelete, "/api/jobs/"+job.ID.String(), nil)
	gt.Value(t, w.Code).Equal(http.StatusNoContent)
	w = env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil)
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}

func TestPipelineAPI(t *testing.T) {
	env := newEnv(t, withoutCRM())
	job := env.createJob(t, map[string]any{"title": "Backend Engineer"})
	cand := env.createCandidate(t, map[string]any{"name": "Aiko Tanaka"})
	base := "/api/pipeline/" + job.ID.String()

	w := env.do(t, http.MethodGet, base, nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	empty := decode[board](t, w)
	gt.Array(t, empty.Stages).Length(6).Required()
	gt.Value(t, empty.Stages[0].Stage).Equal("New Applicants")
	gt.Value(t, empty.Stages[5].Stage).Equal("Rejected")

	w = env.do(t, http.MethodPost, base+"/candidates", map[string]any{"candidateId": cand.ID})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, decode[board](t, w).in("New Applicants")).Equal([]string{cand.ID.String()})

	t.Run("unknown candidate cannot be added", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/candidates", map[string]any{"candidateId": "nobody"})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("move without CRM", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID,
			"fromStage":   "New Applicants",
			"toStage":     "Interview",
			"actor":       "alice",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[moveResponse](t, w)
		gt.B(t, resp.Moved).True()
		gt.B(t, resp.CRMSynced).False()
		gt.Value(t, resp.Message).Equal("CRM is not configured")
		gt.Value(t, resp.Board.in("Interview")).Equal([]string{cand.ID.String()})
		gt.Array(t, resp.Board.in("New Applicants")).Length(0)
		gt.Value(t, resp.Event.Actor).Equal("alice")
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID,
			"fromStage":   "Interview",
			"toStage":     "Interview",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[moveResponse](t, w)
		gt.B(t, resp.Moved).False()
		gt.Value(t, resp.Event).Nil()
	})

	t.Run("invalid stage", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID,
			"fromStage":   "Interview",
			"toStage":     "Archived",
		})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("candidate not in source stage", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID,
			"fromStage":   "Offer",
			"toStage":     "Hired",
		})
		gt.Value(t, w.Code).Equal(http.StatusConflict)

		b := decode[board](t, env.do(t, http.MethodGet, base, nil))
		gt.Value(t, b.in("Interview")).Equal([]string{cand.ID.String()})
	})

	t.Run("unknown job", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/pipeline/no-such-job", nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)

		w = env.do(t, http.MethodPost, "/api/pipeline/no-such-job/move", map[string]any{
			"candidateId": cand.ID,
			"fromStage":   "Interview",
			"toStage":     "Offer",
		})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestPipelineMoveMirrorsToCRM(t *testing.T) {
	env := newEnv(t)
	job := env.createJob(t, map[string]any{"title": "Backend Engineer"})
	cand := env.createCandidate(t, map[string]any{"name": "Aiko Tanaka", "email": "aiko@example.com"})
	base := "/api/pipeline/" + job.ID.String()

	w := env.do(t, http.MethodPost, base+"/candidates", map[string]any{"candidateId": cand.ID})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	t.Run("not connected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID, "fromStage": "New Applicants", "toStage": "Screening", "tenantId": "12345",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[moveResponse](t, w)
		gt.B(t, resp.Moved).True()
		gt.B(t, resp.CRMSynced).False()
		gt.String(t, resp.Message).NotEqual("")
	})

	loc := env.connect(t, "abc123")
	gt.Value(t, loc.Query().Get("auth")).Equal("success")

	t.Run("connected but candidate not synced", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID, "fromStage": "Screening", "toStage": "Interview", "tenantId": "12345",
		})
		resp := decode[moveResponse](t, w)
		gt.B(t, resp.Moved).True()
		gt.B(t, resp.CRMSynced).False()
		gt.Value(t, resp.Message).Equal("candidate is not synced to CRM")
		gt.Array(t, env.crm.Notes()).Length(0)
	})

	w = env.do(t, http.MethodPost, "/api/sync/candidates", map[string]any{})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	synced := decode[syncResponse](t, w)
	gt.Value(t, synced.Source).Equal("crm")
	gt.Number(t, synced.Succeeded).Equal(1)

	w = env.do(t, http.MethodPost, "/api/sync/jobs", map[string]any{"tenantId": "12345"})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Number(t, decode[syncResponse](t, w).Succeeded).Equal(1)

	t.Run("synced move adds a note and updates the deal", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/move", map[string]any{
			"candidateId": cand.ID, "fromStage": "Interview", "toStage": "Hired", "tenantId": "12345",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		resp := decode[moveResponse](t, w)
		gt.B(t, resp.CRMSynced).True()
		gt.Value(t, resp.CRM).NotNil().Required()
		gt.B(t, resp.CRM.NoteCreated).True()
		gt.B(t, resp.CRM.DealUpdated).True()

		notes := env.crm.Notes()
		gt.Array(t, notes).Length(1).Required()

		stored := decode[model.Job](t, env.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil))
		deal, ok := env.crm.Object("deals", stored.RemoteID)
		gt.B(t, ok).True()
		gt.Value(t, deal["dealstage"]).Equal("closedwon")
	})

	t.Run("associate", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/associate", map[string]any{"candidateId": cand.ID})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Array(t, env.crm.Associations()).Length(1)
	})

	t.Run("status", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sync/status", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		status := decode[model.SyncStatus](t, w)
		gt.Number(t, status.SyncedCandidates).Equal(1)
		gt.Number(t, status.SyncedJobs).Equal(1)
		gt.Number(t, status.UnsyncedCandidates).Equal(0)
	})

	t.Run("remote listing", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/remote/candidates?tenantId=12345", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		remote := decode[[]model.Candidate](t, w)
		gt.Array(t, remote).Length(1).Required()
		gt.Value(t, remote[0].Email).Equal("aiko@example.com")

		w = env.do(t, http.MethodGet, "/api/remote/jobs", nil)
		gt.Array(t, decode[[]model.Job](t, w)).Length(1)
	})
}

func TestSyncRequiresAuthentication(t *testing.T) {
	env := newEnv(t)
	env.createCandidate(t, map[string]any{"name": "Aiko Tanaka"})

	w := env.do(t, http.MethodPost, "/api/sync/candidates", map[string]any{})
	gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
	gt.Number(t, env.crm.Requests()).Equal(0)
}

func TestSyncDisabled(t *testing.T) {
	env := newEnv(t, withSyncDisabled())
	env.connect(t, "abc123")
	env.createCandidate(t, map[string]any{"name": "Aiko Tanaka"})

	w := env.do(t, http.MethodPost, "/api/sync/candidates", map[string]any{})
	gt.Value(t, w.Code).Equal(http.StatusConflict)
	gt.Number(t, env.crm.Count("contacts")).Equal(0)
}

func TestSyncWithFixtureSource(t *testing.T) {
	src := fixture.New()
	env := newEnv(t, withoutCRM(), withFixture(src))

	ok := env.createCandidate(t, map[string]any{"name": "Aiko Tanaka", "email": "aiko@example.com"})
	env.createCandidate(t, map[string]any{"name": "No Mail"})

	w := env.do(t, http.MethodPost, "/api/sync/candidates", map[string]any{})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	resp := decode[syncResponse](t, w)
	gt.Value(t, resp.Source).Equal("fixture")
	gt.Number(t, resp.Total).Equal(2)
	gt.Number(t, resp.Succeeded).Equal(1)
	gt.Number(t, resp.Failed).Equal(1)

	stored := decode[model.Candidate](t, env.do(t, http.MethodGet, "/api/candidates/"+ok.ID.String(), nil))
	gt.String(t, stored.RemoteID).NotEqual("")

	w = env.do(t, http.MethodGet, "/api/remote/candidates", nil)
	gt.Array(t, decode[[]model.Candidate](t, w)).Length(1)

	t.Run("selected ids only", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sync/candidates", map[string]any{"ids": []string{"missing"}})
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}
