package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwiyanr/examflow/internal/model"
	"github.com/dwiyanr/examflow/internal/response"
	"github.com/dwiyanr/examflow/internal/service"
	"github.com/dwiyanr/examflow/internal/store"
	"github.com/dwiyanr/examflow/internal/validator"
)

// ExamHandler handles candidate-facing REST endpoints (join, paper, state).
type ExamHandler struct {
	exams    *service.ExamService
	attempts store.AttemptStore
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(exams *service.ExamService, attempts store.AttemptStore) *ExamHandler {
	return &ExamHandler{exams: exams, attempts: attempts}
}

// JoinExamRequest is the payload for a candidate joining an exam.
type JoinExamRequest struct {
	CandidateID    string `json:"candidate_id" binding:"required,min=1,max=255"`
	AccessPassword string `json:"access_password" binding:"omitempty,max=255"`
}

// ListExams godoc
// GET /api/v1/exams
// Returns candidate-safe summaries of all published exams.
func (h *ExamHandler) ListExams(c *gin.Context) {
	summaries, err := h.exams.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if summaries == nil {
		summaries = []service.ExamSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": summaries})
}

// JoinExam godoc
// POST /api/v1/exams/:exam_id/join
// Validates the access password and returns the sanitized paper together
// with any resumable attempt snapshot.
func (h *ExamHandler) JoinExam(c *gin.Context) {
	examID := c.Param("exam_id")

	var req JoinExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.exams.CheckAccess(c.Request.Context(), examID, req.AccessPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, service.ErrInvalidPassword):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPassword)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	// A broken snapshot never blocks joining; the candidate starts fresh.
	attempt, err := h.attempts.Load(c.Request.Context(), examID, req.CandidateID)
	if err != nil {
		attempt = nil
	}

	response.Success(c, http.StatusOK, gin.H{
		"paper":   exam.Paper(),
		"attempt": attempt,
	})
}

// GetPaper godoc
// GET /api/v1/exams/:exam_id/paper
// Returns the sanitized exam payload (no correct flags, no password).
func (h *ExamHandler) GetPaper(c *gin.Context) {
	paper, err := h.exams.GetPaper(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, paper)
}

// GetState godoc
// GET /api/v1/exams/:exam_id/state?candidate_id=...
// Returns the resumable attempt snapshot for the candidate, or null. This
// endpoint covers the page reload, so the frontend can restore answered
// questions, position, and the remaining time.
func (h *ExamHandler) GetState(c *gin.Context) {
	candidateID := c.Query("candidate_id")
	if candidateID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrCandidateRequired)
		return
	}

	attempt, err := h.attempts.Load(c.Request.Context(), c.Param("exam_id"), candidateID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetResults godoc
// GET /api/v1/exams/:exam_id/results
// Returns recorded submission results for the exam, one per candidate.
func (h *ExamHandler) GetResults(c *gin.Context) {
	results, err := h.exams.Results(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.SubmissionResult{}
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
