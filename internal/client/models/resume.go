package models

// UploadOutcome is produced once by a successful upload.
type UploadOutcome struct {
	ResumeID     string  `json:"resume_id"`
	AnalysisID   string  `json:"analysis_id"`
	Filename     string  `json:"filename"`
	OverallScore float64 `json:"overall_score"`
	Status       string  `json:"status"`
}

// ResumeDetail is the stored resume, including the extracted text.
type ResumeDetail struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
	RawText   string    `json:"raw_text"`
}

// ResumeWithAnalysis is the body of GET /api/resume/{id}. Analysis is nil
// when the resume has not been analyzed.
type ResumeWithAnalysis struct {
	Resume   ResumeDetail    `json:"resume"`
	Analysis *AnalysisResult `json:"analysis"`
}

// HasAnalysis reports whether an analysis came back with the resume.
func (r ResumeWithAnalysis) HasAnalysis() bool {
	return r.Analysis != nil
}

// ResumeListItem is one row of the resume list and the dashboard.
// OverallScore is nil for resumes without an analysis.
type ResumeListItem struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	OverallScore *float64  `json:"overall_score"`
	CreatedAt    Timestamp `json:"created_at"`
}

// ResumeList is the body of GET /api/resume/.
type ResumeList struct {
	Resumes []ResumeListItem `json:"resumes"`
}

// DashboardStats aggregates the user's resumes. AverageScore is nil when
// nothing has been scored yet.
type DashboardStats struct {
	ResumesAnalyzed int      `json:"resumes_analyzed"`
	AverageScore    *float64 `json:"average_score"`
}

// DashboardSnapshot is the read-only body of GET /api/dashboard/.
type DashboardSnapshot struct {
	Message       string           `json:"message"`
	User          UserProfile      `json:"user"`
	Stats         DashboardStats   `json:"stats"`
	RecentResumes []ResumeListItem `json:"recent_resumes"`
}
