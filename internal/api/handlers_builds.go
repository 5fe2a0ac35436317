package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/dgallion1/corpusprep/internal/pipeline"
)

func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	job := pipeline.NewJob(s.cfg.InputDir, s.cfg.OutputDir)
	if err := s.orchestrator.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("build queued", "job_id", job.ID, "input", job.InputRoot, "output", job.OutputRoot)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(pipeline.StatusQueued),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// corpusFile is one artifact in the output root.
type corpusFile struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

func (s *Server) handleListCorpora(w http.ResponseWriter, r *http.Request) {
	ok, err := s.store.IsDir(s.cfg.OutputDir)
	if err != nil {
		jsonError(w, "stat output root: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"corpora": []corpusFile{}})
		return
	}

	entries, err := s.store.List(s.cfg.OutputDir)
	if err != nil {
		jsonError(w, "list output root: "+err.Error(), http.StatusInternalServerError)
		return
	}

	files := []corpusFile{}
	for _, e := range entries {
		if !e.IsRegular {
			continue
		}
		code, ok := strings.CutPrefix(e.Name, "lang-")
		if !ok {
			continue
		}
		code, ok = strings.CutSuffix(code, ".txt")
		if !ok || code == "" {
			continue
		}
		files = append(files, corpusFile{Code: code, Name: e.Name, Bytes: e.Size})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Code < files[j].Code })

	writeJSON(w, http.StatusOK, map[string]any{"corpora": files})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
