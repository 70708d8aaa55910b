package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/repository"
)

type stubProjects struct {
	ProjectService // 未覆盖的方法不会被调用

	saveErr error
	saved   int
	byID    map[string]*model.Project
}

func (s *stubProjects) SaveProject(_ context.Context, userID int, draft model.ProjectDraft) (*model.Project, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saved++
	p := &model.Project{ID: "p-1", UserID: userID, Name: draft.Name}
	s.byID[p.ID] = p
	return p, nil
}

func (s *stubProjects) GetProject(_ context.Context, _ int, projectID string) (*model.Project, error) {
	p, ok := s.byID[projectID]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	return p, nil
}

type recordingDeduper struct {
	held     map[string]bool
	results  map[string]string
	released []string
}

func newRecordingDeduper() *recordingDeduper {
	return &recordingDeduper{held: map[string]bool{}, results: map[string]string{}}
}

func (d *recordingDeduper) AcquireOnce(_ context.Context, scope, key string) bool {
	if d.held[scope+key] {
		return false
	}
	d.held[scope+key] = true
	return true
}

func (d *recordingDeduper) Release(_ context.Context, scope, key string) {
	delete(d.held, scope+key)
	d.released = append(d.released, key)
}

func (d *recordingDeduper) Complete(_ context.Context, scope, key, result string) {
	d.results[scope+key] = result
}

func (d *recordingDeduper) Result(_ context.Context, scope, key string) (string, bool) {
	v, ok := d.results[scope+key]
	return v, ok
}

func postProject(h *ProjectHandler, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":"Mi sitio"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	if key != "" {
		c.Request.Header.Set(IdempotencyHeader, key)
	}
	c.Set("user_id", 4)
	h.CreateProject(c)
	return w
}

func TestCreateProject_InFlightDuplicateConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &stubProjects{byID: map[string]*model.Project{}}
	dedup := newRecordingDeduper()
	dedup.held["project.create:4"+"k1"] = true
	h := NewProjectHandler(projects, dedup, zap.NewNop())

	w := postProject(h, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, projects.saved)
}

func TestCreateProject_CompletedDuplicateReturnsProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &stubProjects{byID: map[string]*model.Project{}}
	h := NewProjectHandler(projects, newRecordingDeduper(), zap.NewNop())

	assert.Equal(t, http.StatusCreated, postProject(h, "k1").Code)

	w := postProject(h, "k1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"p-1"`)
	assert.Equal(t, 1, projects.saved)
}

func TestCreateProject_CompletedDuplicateOfDeletedProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &stubProjects{byID: map[string]*model.Project{}}
	h := NewProjectHandler(projects, newRecordingDeduper(), zap.NewNop())

	assert.Equal(t, http.StatusCreated, postProject(h, "k1").Code)
	delete(projects.byID, "p-1")

	assert.Equal(t, http.StatusNotFound, postProject(h, "k1").Code)
	assert.Equal(t, 1, projects.saved)
}

func TestCreateProject_FailureReleasesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &stubProjects{byID: map[string]*model.Project{}, saveErr: errors.New("db down")}
	dedup := newRecordingDeduper()
	h := NewProjectHandler(projects, dedup, zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, postProject(h, "k1").Code)
	assert.Equal(t, []string{"k1"}, dedup.released)

	projects.saveErr = nil
	assert.Equal(t, http.StatusCreated, postProject(h, "k1").Code)
}

func TestCreateProject_NoKeyNoGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &stubProjects{byID: map[string]*model.Project{}}
	h := NewProjectHandler(projects, newRecordingDeduper(), zap.NewNop())

	assert.Equal(t, http.StatusCreated, postProject(h, "").Code)
	assert.Equal(t, http.StatusCreated, postProject(h, "").Code)
	assert.Equal(t, 2, projects.saved)
}
