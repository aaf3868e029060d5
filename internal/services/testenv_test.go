package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender records outbound mail, or fails every send when fail is set.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// fakeStorage keeps objects in a map, or fails every store when failStore is
// set.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	failStore bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Store(ctx context.Context, r io.Reader, folder, filename, mimeType string) (*storage.StoredObject, error) {
	if f.failStore {
		return nil, errors.New("store failed")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	publicID := fmt.Sprintf("%s/object-%d%s", folder, f.seq, filepath.Ext(filename))
	f.objects[publicID] = data

	return &storage.StoredObject{
		URL:          "http://files.local/" + publicID,
		PublicID:     publicID,
		ResourceType: storage.ResourceTypeFor(mimeType),
	}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, publicID string, resourceType models.AttachmentType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, publicID)
	return nil
}

func (f *fakeStorage) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type serviceTestEnv struct {
	db     *gorm.DB
	store  *fakeStorage
	mailer *fakeSender

	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	issueRepo      repository.IssueRepository
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository

	auth       *AuthService
	project    *ProjectService
	issue      *IssueService
	comment    *CommentService
	attachment *AttachmentService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &serviceTestEnv{
		db:     db,
		store:  newFakeStorage(),
		mailer: &fakeSender{},
	}

	env.userRepo = repository.NewUserRepository(db)
	env.projectRepo = repository.NewProjectRepository(db)
	env.issueRepo = repository.NewIssueRepository(db)
	env.commentRepo = repository.NewCommentRepository(db)
	env.attachmentRepo = repository.NewAttachmentRepository(db)

	tokenMgr := utils.NewTokenManager("test-secret", 1)
	frontendURL := "http://localhost:3000"

	env.auth = NewAuthService(env.userRepo, tokenMgr, env.mailer, frontendURL)
	env.project = NewProjectService(env.projectRepo, env.userRepo, env.issueRepo, env.attachmentRepo, env.store, env.mailer, frontendURL)
	env.issue = NewIssueService(env.issueRepo, env.projectRepo, env.attachmentRepo, env.store)
	env.comment = NewCommentService(env.commentRepo, env.issueRepo, env.projectRepo, env.attachmentRepo, env.store)
	env.attachment = NewAttachmentService(env.attachmentRepo, env.userRepo, env.store)

	return env
}

func createTestUser(t *testing.T, env *serviceTestEnv, name, email string) *models.User {
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

func createTestProject(t *testing.T, env *serviceTestEnv, owner *models.User, key string) *models.Project {
	t.Helper()

	project, err := env.project.CreateProject(CreateProjectInput{
		Name:    key + " project",
		Key:     key,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	return project
}

func addTestMember(t *testing.T, env *serviceTestEnv, projectID uint64, user *models.User) {
	t.Helper()

	require.NoError(t, env.db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      models.RoleDeveloper,
	}).Error)
}

func uploadTestAttachment(t *testing.T, env *serviceTestEnv, uploaderID uint64) *models.Attachment {
	t.Helper()

	attachment, err := env.attachment.Upload(context.Background(), UploadInput{
		UploaderID: uploaderID,
		Filename:   "shot.png",
		MimeType:   "image/png",
		Size:       4,
		Reader:     bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}),
	})
	require.NoError(t, err)
	return attachment
}
