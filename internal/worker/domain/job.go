package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// JobID keeps the identifier exactly as the queue encoded it (number or string)
// so it can be echoed back unchanged in job_id.
type JobID struct {
	raw json.RawMessage
}

// NewJobID builds a numeric identifier.
func NewJobID(id int64) JobID {
	return JobID{raw: json.RawMessage(strconv.FormatInt(id, 10))}
}

// NewStringJobID builds a string identifier.
func NewStringJobID(id string) JobID {
	raw, _ := json.Marshal(id)
	return JobID{raw: raw}
}

// String returns the identifier without JSON quoting.
func (id JobID) String() string {
	if len(id.raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// IsZero reports whether the identifier is missing.
func (id JobID) IsZero() bool {
	return len(id.raw) == 0 || bytes.Equal(id.raw, []byte("null"))
}

// MarshalJSON implements json.Marshaler
func (id JobID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON accepts a JSON number or string.
func (id *JobID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty job id")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
	case 'n':
		id.raw = nil
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
	}
	id.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// Job represents one unit of work handed out by the jobs API
type Job struct {
	ID      JobID  `json:"id"`
	Keyword string `json:"keyword"`
}

// Article is the parsed generation result
type Article struct {
	HTML             string
	MetaDescription  string
	MetaFromFallback bool
}

// Submission is the payload posted back to the jobs API.
// The article fields are sent for StatusDone only, even when empty.
type Submission struct {
	JobID    JobID  `json:"job_id"`
	Status   string `json:"status"`
	Title    string `json:"judul,omitempty"`
	Slug     string `json:"slug,omitempty"`
	MetaDesc string `json:"metadesc,omitempty"`
	Article  string `json:"artikel,omitempty"`
}

type donePayload struct {
	JobID    JobID  `json:"job_id"`
	Status   string `json:"status"`
	Title    string `json:"judul"`
	Slug     string `json:"slug"`
	MetaDesc string `json:"metadesc"`
	Article  string `json:"artikel"`
}

type failedPayload struct {
	JobID  JobID  `json:"job_id"`
	Status string `json:"status"`
}

// MarshalJSON picks the field set by status rather than by zero value
func (s Submission) MarshalJSON() ([]byte, error) {
	if s.Status != StatusDone {
		return json.Marshal(failedPayload{JobID: s.JobID, Status: s.Status})
	}
	return json.Marshal(donePayload(s))
}

// NewDoneSubmission builds a success payload
func NewDoneSubmission(job *Job, slug string, article Article) Submission {
	return Submission{
		JobID:    job.ID,
		Status:   StatusDone,
		Title:    job.Keyword,
		Slug:     slug,
		MetaDesc: article.MetaDescription,
		Article:  article.HTML,
	}
}

// NewFailedSubmission builds a failure payload
func NewFailedSubmission(job *Job) Submission {
	return Submission{JobID: job.ID, Status: StatusFailed}
}

// Outcome summarizes how a job ended
type Outcome struct {
	Job      *Job
	State    string
	Attempts int
	Slug     string
	Reason   string
}

// OutcomeEvent is published after every job when events are enabled
type OutcomeEvent struct {
	RunID       string    `json:"run_id"`
	WorkerIndex int       `json:"worker_index"`
	JobID       JobID     `json:"job_id"`
	Keyword     string    `json:"keyword"`
	Status      string    `json:"status"`
	Slug        string    `json:"slug,omitempty"`
	Attempts    int       `json:"attempts"`
	Reason      string    `json:"reason,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}
