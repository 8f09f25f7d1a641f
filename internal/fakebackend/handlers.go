package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxUploadBytes = 32 << 20
	recentLimit    = 5
	minTextLength  = 20
)

var (
	reValidEmail      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	allowedExtensions = []string{".pdf", ".docx", ".doc", ".txt"}
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	Tier      string  `json:"tier"`
	CreatedAt string  `json:"created_at"`
}

type resumeItem struct {
	ID           string   `json:"id"`
	Filename     string   `json:"filename"`
	Status       string   `json:"status"`
	OverallScore *float64 `json:"overall_score"`
	CreatedAt    string   `json:"created_at"`
}

type credentialsRequest struct {
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
}

func toUserResponse(u *user) userResponse {
	return userResponse{
		ID:        u.id,
		Email:     u.email,
		FullName:  u.fullName,
		Tier:      u.tier,
		CreatedAt: isoformat(u.createdAt),
	}
}

// decodeCredentials parses and validates a login or register body. It
// writes the 422 response itself and reports false on failure.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{
			{Msg: "JSON decode error", Loc: []any{"body"}, Type: "json_invalid"},
		})
		return req, false
	}

	var errs []fieldError
	switch {
	case req.Email == "":
		errs = append(errs, fieldError{Msg: "Field required", Loc: []any{"body", "email"}, Type: "missing"})
	case !reValidEmail.MatchString(req.Email):
		errs = append(errs, fieldError{Msg: "value is not a valid email address", Loc: []any{"body", "email"}, Type: "value_error"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{Msg: "Field required", Loc: []any{"body", "password"}, Type: "missing"})
	}
	if len(errs) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, errs)
		return req, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	if _, exists := s.byEmail[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "A user with this email already exists.")
		return
	}
	id := s.addUserLocked(req.Email, hash, req.FullName)
	s.mu.Unlock()

	s.writeToken(w, id)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	var u *user
	if id, found := s.byEmail[strings.ToLower(req.Email)]; found {
		u = s.users[id]
	}
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if !u.active {
		writeDetail(w, http.StatusForbidden, "This account has been deactivated.")
		return
	}

	s.writeToken(w, u.id)
}

func (s *Server) writeToken(w http.ResponseWriter, userID string) {
	token, err := generateToken(userID, s.secret, s.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUserID(r)]
	resp := toUserResponse(u)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{
			{Msg: "Field required", Loc: []any{"body", "file"}, Type: "missing"},
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{
			{Msg: "Field required", Loc: []any{"body", "file"}, Type: "missing"},
		})
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "resume"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtension(ext) {
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type '%s'. Allowed: %s", ext, strings.Join(allowedExtensions, ", ")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}

	text := ""
	if utf8.Valid(content) {
		text = string(content)
	}
	if len(strings.TrimSpace(text)) < minTextLength {
		writeDetail(w, http.StatusBadRequest,
			"Could not extract meaningful text from the file. Please upload a valid resume.")
		return
	}

	s.mu.Lock()
	resumeID := s.addResumeLocked(currentUserID(r), filename, text, true)
	a := s.analyses[resumeID]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"resume_id":     resumeID,
		"analysis_id":   a.id,
		"filename":      filename,
		"overall_score": a.result.OverallScore,
		"status":        "analyzed",
	})
}

func allowedExtension(ext string) bool {
	for _, e := range allowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.resumes[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Resume not found.")
		return
	}
	if res.userID != currentUserID(r) {
		writeDetail(w, http.StatusForbidden, "Access denied.")
		return
	}

	var analysisBody any
	if a, found := s.analyses[id]; found {
		analysisBody = map[string]any{
			"id":            a.id,
			"overall_score": a.result.OverallScore,
			"sections":      a.result.Sections,
			"suggestions":   a.result.Suggestions,
			"keywords":      a.result.Keywords,
			"created_at":    isoformat(a.createdAt),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resume": map[string]any{
			"id":         res.id,
			"filename":   res.filename,
			"status":     res.status,
			"created_at": isoformat(res.createdAt),
			"raw_text":   res.rawText,
		},
		"analysis": analysisBody,
	})
}

// listItemsLocked builds list rows for userID. Caller holds s.mu.
func (s *Server) listItemsLocked(userID string) []resumeItem {
	rows := s.resumesOf(userID)
	items := make([]resumeItem, 0, len(rows))
	for _, res := range rows {
		item := resumeItem{
			ID:        res.id,
			Filename:  res.filename,
			Status:    res.status,
			CreatedAt: isoformat(res.createdAt),
		}
		if a, ok := s.analyses[res.id]; ok {
			score := a.result.OverallScore
			item.OverallScore = &score
		}
		items = append(items, item)
	}
	return items
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.listItemsLocked(currentUserID(r))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"resumes": items})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[currentUserID(r)]
	items := s.listItemsLocked(u.id)
	profile := toUserResponse(u)
	s.mu.Unlock()

	var sum float64
	scored := 0
	for _, it := range items {
		if it.OverallScore != nil {
			sum += *it.OverallScore
			scored++
		}
	}
	var average *float64
	if scored > 0 {
		avg := math.Round(sum/float64(scored)*10) / 10
		average = &avg
	}

	recent := items
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	name := u.email
	if u.fullName != nil && *u.fullName != "" {
		name = *u.fullName
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Welcome back, %s!", name),
		"user":    profile,
		"stats": map[string]any{
			"resumes_analyzed": len(items),
			"average_score":    average,
		},
		"recent_resumes": recent,
	})
}
