package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coglab/domain/core"
	"coglab/domain/trial"
	"coglab/internal/runner"
)

// createRunRequest is the inbound study configuration. Timing fields
// default when omitted.
type createRunRequest struct {
	Task       trial.TaskFamily  `json:"task"`
	TrialCount int               `json:"trial_count"`
	Conditions []trial.Condition `json:"conditions"`
	Randomize  bool              `json:"randomize"`
	Seed       int64             `json:"seed"`
	Timing     *trial.Timing     `json:"timing,omitempty"`
}

type submitResponseRequest struct {
	Token string `json:"token"`
}

// stimulusDTO flattens the stimulus variant for JSON clients.
type stimulusDTO struct {
	Kind     trial.StimulusKind `json:"kind"`
	Word     string             `json:"word,omitempty"`
	Display  string             `json:"display,omitempty"`
	ImageRef string             `json:"image_ref,omitempty"`
	Label    string             `json:"label,omitempty"`
}

func toStimulusDTO(s trial.Stimulus) *stimulusDTO {
	switch v := s.(type) {
	case trial.TextStimulus:
		return &stimulusDTO{Kind: v.Kind(), Word: v.Word, Display: v.Display}
	case trial.ImageStimulus:
		return &stimulusDTO{Kind: v.Kind(), ImageRef: v.ImageRef, Label: v.Label}
	default:
		return nil
	}
}

type runSnapshotResponse struct {
	RunID     string       `json:"run_id"`
	State     runner.State `json:"state"`
	Entered   int          `json:"entered"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Stimulus  *stimulusDTO `json:"stimulus,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
}

func toSnapshotResponse(snap runner.Snapshot) runSnapshotResponse {
	resp := runSnapshotResponse{
		RunID:     snap.RunID.String(),
		State:     snap.State,
		Entered:   snap.Entered,
		Completed: snap.Completed,
		Total:     snap.Total,
		Warnings:  snap.Warnings,
	}
	if snap.Active != nil {
		resp.Stimulus = toStimulusDTO(snap.Active.Stimulus)
	}
	return resp
}

func (s *Server) handleCreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg := trial.StudyConfig{
		Task:       req.Task,
		TrialCount: req.TrialCount,
		Conditions: req.Conditions,
		Randomize:  req.Randomize,
		Seed:       req.Seed,
		Timing:     trial.DefaultTiming(),
	}
	if req.Timing != nil {
		cfg.Timing = *req.Timing
	}

	runID, err := s.runs.CreateRun(c.Request.Context(), cfg, nil)
	if err != nil {
		if core.IsInvalidConfigError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("failed to create run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"run_id": runID.String()})
}

func (s *Server) handleGetRun(c *gin.Context) {
	runID := core.RunID(c.Param("id"))
	snap, err := s.runs.Snapshot(runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleSubmitResponse(c *gin.Context) {
	runID := core.RunID(c.Param("id"))

	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	accepted, err := s.runs.SubmitResponse(runID, req.Token)
	if err != nil {
		switch {
		case core.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

func (s *Server) handleAbortRun(c *gin.Context) {
	runID := core.RunID(c.Param("id"))
	if err := s.runs.Abort(runID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"aborted": true})
}

func (s *Server) handleAnalyzeRun(c *gin.Context) {
	runID := core.RunID(c.Param("id"))
	result, err := s.runs.Analyze(runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListOutcomes(c *gin.Context) {
	runID := core.RunID(c.Param("id"))

	outcomes, err := s.runs.Outcomes(runID)
	if err != nil {
		// The run may have been removed from the manager; fall back to
		// the persistence collaborator when one is configured.
		if s.reader == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		outcomes, err = s.reader.ListByRun(c.Request.Context(), runID)
		if err != nil || len(outcomes) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes, "count": len(outcomes)})
}
