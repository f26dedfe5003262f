package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/errutil"
)

func listCandidatesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := uc.Candidate.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, candidates)
	}
}

func createCandidateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c model.Candidate
		if err := decodeJSON(r, &c); err != nil {
			badRequest(w, r, err)
			return
		}
		created, err := uc.Candidate.Create(r.Context(), &c)
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, created)
	}
}

func getCandidateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := uc.Candidate.Get(r.Context(), types.CandidateID(chi.URLParam(r, "id")))
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, c)
	}
}

func updateCandidateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c model.Candidate
		if err := decodeJSON(r, &c); err != nil {
			badRequest(w, r, err)
			return
		}
		c.ID = types.CandidateID(chi.URLParam(r, "id"))
		updated, err := uc.Candidate.Update(r.Context(), &c)
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, updated)
	}
}

func deleteCandidateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Candidate.Delete(r.Context(), types.CandidateID(chi.URLParam(r, "id"))); err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listJobsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := uc.Job.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, jobs)
	}
}

func createJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var j model.Job
		if err := decodeJSON(r, &j); err != nil {
			badRequest(w, r, err)
			return
		}
		created, err := uc.Job.Create(r.Context(), &j)
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, created)
	}
}

func getJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := uc.Job.Get(r.Context(), types.JobID(chi.URLParam(r, "id")))
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, j)
	}
}

func updateJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var j model.Job
		if err := decodeJSON(r, &j); err != nil {
			badRequest(w, r, err)
			return
		}
		j.ID = types.JobID(chi.URLParam(r, "id"))
		updated, err := uc.Job.Update(r.Context(), &j)
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, updated)
	}
}

func deleteJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Job.Delete(r.Context(), types.JobID(chi.URLParam(r, "id"))); err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
