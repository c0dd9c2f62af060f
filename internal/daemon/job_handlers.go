package daemon

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"overlayd/internal/fileutil"
	"overlayd/internal/logging"
	"overlayd/internal/overlay"
	"overlayd/internal/queue"
)

// OutputFileName is the rendered result inside a job working directory.
const OutputFileName = "rendered.mp4"

const maxUploadMemory = 64 << 20

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

type jobView struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Output    string    `json:"output,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOf(job *queue.Job) jobView {
	view := jobView{
		JobID:     job.ID,
		Status:    string(job.Status),
		Progress:  job.Progress,
		Message:   job.Message,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == queue.StatusDone {
		view.Output = filepath.Base(job.OutputPath)
	}
	return view
}

func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	overlaysJSON := strings.TrimSpace(r.FormValue("overlays_json"))
	if overlaysJSON == "" {
		overlaysJSON = "[]"
	}

	jobID := uuid.NewString()
	workDir := s.daemon.cfg.JobDir(jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		s.logger.Error("failed to create working directory", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create working directory")
		return
	}

	var firstPath, videoPath string
	for _, header := range files {
		dst := filepath.Join(workDir, fileutil.SanitizeName(header.Filename))
		if err := saveUpload(header, dst); err != nil {
			_ = os.RemoveAll(workDir)
			s.logger.Error("failed to store upload", logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		if firstPath == "" {
			firstPath = dst
		}
		if videoPath == "" && isVideoUpload(header, dst) {
			videoPath = dst
		}
	}
	if videoPath == "" {
		videoPath = firstPath
	}

	overlaysPath := filepath.Join(workDir, overlay.SpecFileName)
	if err := fileutil.WriteStream(overlaysPath, strings.NewReader(overlaysJSON)); err != nil {
		_ = os.RemoveAll(workDir)
		s.logger.Error("failed to store overlay list", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store overlay list")
		return
	}

	job := &queue.Job{
		ID:         jobID,
		Status:     queue.StatusQueued,
		InputPath:  videoPath,
		OutputPath: filepath.Join(workDir, OutputFileName),
		WorkDir:    workDir,
		Message:    "queued",
	}
	if err := s.daemon.Submit(job); err != nil {
		_ = os.RemoveAll(workDir)
		s.logger.Error("failed to enqueue job", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

func saveUpload(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return fileutil.WriteStream(dst, src)
}

func isVideoUpload(header *multipart.FileHeader, path string) bool {
	if strings.HasPrefix(header.Header.Get("Content-Type"), "video/") {
		return true
	}
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(job))
}

func (s *apiServer) handleResult(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status != queue.StatusDone {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "not ready",
			"status": string(job.Status),
		})
		return
	}
	if !fileutil.Exists(job.OutputPath) {
		s.writeError(w, http.StatusInternalServerError, "output missing")
		return
	}
	http.ServeFile(w, r, job.OutputPath)
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.daemon.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, viewOf(job))
	}
	s.writeJSON(w, http.StatusOK, map[string][]jobView{"jobs": views})
}

func (s *apiServer) lookupJob(w http.ResponseWriter, r *http.Request) (*queue.Job, bool) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.daemon.store.Get(r.Context(), jobID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return job, true
}
