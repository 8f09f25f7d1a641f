package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
)

// Client is the backend API contract.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.Credential, error)
	Login(ctx context.Context, req models.LoginRequest) (models.Credential, error)
	Me(ctx context.Context) (models.UserProfile, error)
	UploadResume(ctx context.Context, filename string, content io.Reader) (models.UploadOutcome, error)
	GetResume(ctx context.Context, resumeID string) (models.ResumeWithAnalysis, error)
	ListResumes(ctx context.Context) (models.ResumeList, error)
	Dashboard(ctx context.Context) (models.DashboardSnapshot, error)
}

// CredentialSource is the read side of the token store.
type CredentialSource interface {
	Load(ctx context.Context) (models.Credential, bool, error)
}
