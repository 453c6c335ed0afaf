package models

import "time"

// ReportedContentType enumerates what a report can flag
type ReportedContentType string

const (
	ReportedContentEvent        ReportedContentType = "EVENT"
	ReportedContentAnnouncement ReportedContentType = "ANNOUNCEMENT"
	ReportedContentUser         ReportedContentType = "USER"
)

// Report flags a piece of content for moderation. Reports are hard-deleted
// once handled.
type Report struct {
	ID          string              `json:"id"`
	ReporterID  string              `json:"reporterId"`
	ContentType ReportedContentType `json:"contentType"`
	ContentID   string              `json:"contentId"`
	Reason      string              `json:"reason"`
	CreatedAt   time.Time           `json:"createdAt"`
}
