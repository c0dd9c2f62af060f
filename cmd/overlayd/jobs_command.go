package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"overlayd/internal/config"
	"overlayd/internal/queue"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type jobRow struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type jobsResponse struct {
	Jobs []jobRow `json:"jobs"`
}

func newJobsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			jobs, err := fetchJobs(cfg.Paths.APIBind)
			if err != nil {
				return fmt.Errorf("contact daemon at %s: %w (is overlayd running?)", cfg.Paths.APIBind, err)
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs.")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.JobID,
					statusCell(job.Status, colorize),
					fmt.Sprintf("%d%%", job.Progress),
					job.Message,
					job.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderJobsTable(rows))
			return nil
		},
	}
}

func fetchJobs(bind string) ([]jobRow, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + bind + "/jobs")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var payload jobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode job list: %w", err)
	}
	return payload.Jobs, nil
}

func statusCell(status string, colorize bool) string {
	if !colorize {
		return status
	}
	var color string
	switch queue.Status(status) {
	case queue.StatusDone:
		color = ansiGreen
	case queue.StatusError:
		color = ansiRed
	case queue.StatusProcessing:
		color = ansiYellow
	case queue.StatusQueued:
		color = ansiBlue
	}
	if color == "" {
		return status
	}
	return color + status + ansiReset
}
