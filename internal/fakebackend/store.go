package fakebackend

import (
	"sort"
	"time"
)

type user struct {
	id           string
	email        string
	fullName     *string
	passwordHash []byte
	tier         string
	active       bool
	createdAt    time.Time
}

type resume struct {
	id        string
	userID    string
	filename  string
	status    string
	rawText   string
	createdAt time.Time
}

type analysis struct {
	id        string
	resumeID  string
	result    analysisResult
	createdAt time.Time
}

// resumesOf returns the user's resumes, newest first. Caller holds s.mu.
func (s *Server) resumesOf(userID string) []*resume {
	var out []*resume
	for _, r := range s.resumes {
		if r.userID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].id > out[j].id
		}
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

// isoformat mimics Python's datetime.isoformat() on a naive UTC value.
func isoformat(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}
