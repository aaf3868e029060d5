package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubSender swallows outbound mail.
type stubSender struct {
	mu   sync.Mutex
	sent int
}

func (s *stubSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	return nil
}

// stubStorage keeps objects in memory.
type stubStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: map[string][]byte{}}
}

func (s *stubStorage) Store(ctx context.Context, r io.Reader, folder, filename, mimeType string) (*storage.StoredObject, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	publicID := fmt.Sprintf("%s/object-%d", folder, s.seq)
	s.objects[publicID] = data

	return &storage.StoredObject{
		URL:          "http://files.local/" + publicID,
		PublicID:     publicID,
		ResourceType: storage.ResourceTypeFor(mimeType),
	}, nil
}

func (s *stubStorage) Delete(ctx context.Context, publicID string, resourceType models.AttachmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicID)
	return nil
}

type handlerTestEnv struct {
	db     *gorm.DB
	mailer *stubSender

	authService       *services.AuthService
	projectService    *services.ProjectService
	issueService      *services.IssueService
	commentService    *services.CommentService
	attachmentService *services.AttachmentService

	auth       *AuthHandler
	project    *ProjectHandler
	issue      *IssueHandler
	comment    *CommentHandler
	attachment *AttachmentHandler
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.ProjectInvite{},
		&models.Issue{},
		&models.Comment{},
		&models.Attachment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	tokenMgr := utils.NewTokenManager("test-secret", 1)
	mailer := &stubSender{}
	store := newStubStorage()
	frontendURL := "http://localhost:3000"

	env := &handlerTestEnv{db: db, mailer: mailer}
	env.authService = services.NewAuthService(userRepo, tokenMgr, mailer, frontendURL)
	env.projectService = services.NewProjectService(projectRepo, userRepo, issueRepo, attachmentRepo, store, mailer, frontendURL)
	env.issueService = services.NewIssueService(issueRepo, projectRepo, attachmentRepo, store)
	env.commentService = services.NewCommentService(commentRepo, issueRepo, projectRepo, attachmentRepo, store)
	env.attachmentService = services.NewAttachmentService(attachmentRepo, userRepo, store)

	env.auth = NewAuthHandler(env.authService)
	env.project = NewProjectHandler(env.projectService)
	env.issue = NewIssueHandler(env.issueService)
	env.comment = NewCommentHandler(env.commentService)
	env.attachment = NewAttachmentHandler(env.attachmentService)

	return env
}

func testContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func createHandlerTestUser(t *testing.T, env *handlerTestEnv, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed",
		Role:         models.RoleDeveloper,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func createHandlerTestProject(t *testing.T, env *handlerTestEnv, owner *models.User, key string) *models.Project {
	t.Helper()

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:    key + " project",
		Key:     key,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	return project
}
