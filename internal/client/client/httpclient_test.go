package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/client/tokenstore"
	"github.com/dmitrijs2005/resumecli/internal/fakebackend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Doe
jane@example.com | +1 555 123 4567

Experience
- Led a team of 5 and increased throughput by 40%

Skills
Go, SQL, Docker
`

type env struct {
	be     *fakebackend.Server
	srv    *httptest.Server
	store  *tokenstore.MemoryStore
	client *HTTPClient
}

func newEnv(t *testing.T) *env {
	t.Helper()
	be := fakebackend.New()
	srv := httptest.NewServer(be.Handler())
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	return &env{
		be:     be,
		srv:    srv,
		store:  store,
		client: NewHTTPClient(srv.URL+"/", 5*time.Second, store),
	}
}

func (e *env) signUp(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	cred, err := e.client.Register(ctx, models.RegisterRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "Secret123"})
	require.NoError(t, err)
	require.NoError(t, e.store.Save(ctx, cred))
}

func TestHTTPClient_RegisterAndMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cred, err := e.client.Register(ctx, models.RegisterRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, cred.AccessToken)
	assert.Equal(t, "bearer", cred.TokenType)
	assert.Empty(t, e.be.LastHeader(fakebackend.RouteRegister, "Authorization"))
	assert.Equal(t, "application/json", e.be.LastHeader(fakebackend.RouteRegister, "Content-Type"))

	require.NoError(t, e.store.Save(ctx, cred))

	me, err := e.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)
	assert.Equal(t, "Jane Doe", me.DisplayName())
	assert.False(t, me.CreatedAt.IsZero())

	assert.Equal(t, "Bearer "+cred.AccessToken, e.be.LastHeader(fakebackend.RouteMe, "Authorization"))
	_, err = uuid.Parse(e.be.LastHeader(fakebackend.RouteMe, "X-Request-ID"))
	assert.NoError(t, err)
}

func TestHTTPClient_LoginAfterRegister(t *testing.T) {
	e := newEnv(t)
	e.signUp(t)

	cred, err := e.client.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, cred.AccessToken)
}

func TestHTTPClient_LoginRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindMessage, apiErr.Kind)
	assert.Equal(t, "Invalid email or password.", apiErr.Message)
}

func TestHTTPClient_FieldDetailFlattened(t *testing.T) {
	e := newEnv(t)
	e.be.Fail(fakebackend.RouteLogin, http.StatusUnprocessableEntity, `{"detail":[{"msg":"too short","loc":["password"]}]}`)

	_, err := e.client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "short"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "too short", apiErr.Error())
	assert.Equal(t, KindFields, apiErr.Kind)
	msg, ok := apiErr.FieldMessage("password")
	require.True(t, ok)
	assert.Equal(t, "too short", msg)
}

func TestHTTPClient_FallbackStatusMessage(t *testing.T) {
	e := newEnv(t)
	e.be.Fail(fakebackend.RouteLogin, http.StatusInternalServerError, `Internal Server Error`)

	_, err := e.client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.EqualError(t, err, "Request failed with status 500")
}

func TestHTTPClient_NoCredentialSendsNoHeader(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, e.be.LastHeader(fakebackend.RouteMe, "Authorization"))
	assert.Equal(t, "Not authenticated", Message(err))
}

func TestHTTPClient_UploadFetchListDashboard(t *testing.T) {
	e := newEnv(t)
	e.signUp(t)
	ctx := context.Background()

	out, err := e.client.UploadResume(ctx, "cv.txt", strings.NewReader(resumeText))
	require.NoError(t, err)
	assert.Equal(t, "cv.txt", out.Filename)
	assert.Equal(t, "analyzed", out.Status)
	assert.NotEmpty(t, out.ResumeID)
	assert.True(t, strings.HasPrefix(e.be.LastHeader(fakebackend.RouteUpload, "Content-Type"), "multipart/form-data; boundary="))

	got, err := e.client.GetResume(ctx, out.ResumeID)
	require.NoError(t, err)
	require.True(t, got.HasAnalysis())
	assert.Equal(t, out.AnalysisID, got.Analysis.ID)
	assert.Equal(t, out.OverallScore, got.Analysis.OverallScore)
	assert.Equal(t, resumeText, got.Resume.RawText)

	list, err := e.client.ListResumes(ctx)
	require.NoError(t, err)
	require.Len(t, list.Resumes, 1)
	require.NotNil(t, list.Resumes[0].OverallScore)

	dash, err := e.client.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Stats.ResumesAnalyzed)
	assert.Equal(t, "Welcome back, Jane Doe!", dash.Message)
	assert.Len(t, dash.RecentResumes, 1)
}

func TestHTTPClient_GetResumeNotFound(t *testing.T) {
	e := newEnv(t)
	e.signUp(t)

	_, err := e.client.GetResume(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Resume not found.", Message(err))
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	e := newEnv(t)
	e.srv.Close()

	_, err := e.client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_Timeout(t *testing.T) {
	e := newEnv(t)
	c := NewHTTPClient(e.srv.URL, 50*time.Millisecond, e.store)

	gate := e.be.Hold(fakebackend.RouteLogin)
	defer gate.Release()

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.client.Me(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, context.Canceled))
}

type failingSource struct{}

func (failingSource) Load(context.Context) (models.Credential, bool, error) {
	return models.Credential{}, false, errors.New("disk gone")
}

func TestHTTPClient_CredentialLoadError(t *testing.T) {
	e := newEnv(t)
	c := NewHTTPClient(e.srv.URL, time.Second, failingSource{})

	_, err := c.Me(context.Background())
	require.ErrorContains(t, err, "load credential")
	assert.Equal(t, 0, e.be.Requests(fakebackend.RouteMe))
}
