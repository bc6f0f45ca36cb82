package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/dbx"
	"github.com/dmitrijs2005/til/internal/server/config"
	"github.com/dmitrijs2005/til/internal/server/models"
	factsrepo "github.com/dmitrijs2005/til/internal/server/repositories/facts"
	refreshtokensrepo "github.com/dmitrijs2005/til/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/til/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	tokens       map[string]*models.RefreshToken
	createErr    error
	deletedUsers []string
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := f.tokens[token]; ok {
		return rt, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	for k, rt := range f.tokens {
		if rt.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakeFactsRepo struct {
	facts       []models.Fact
	gotFilter   models.FactFilter
	created     *models.Fact
	updatedID   int64
	updatePatch map[string]int
	err         error
}

func (f *fakeFactsRepo) List(_ context.Context, filter models.FactFilter) ([]models.Fact, error) {
	f.gotFilter = filter
	return f.facts, f.err
}

func (f *fakeFactsRepo) Create(_ context.Context, fact *models.Fact) (*models.Fact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = fact
	out := *fact
	out.ID = 1
	return &out, nil
}

func (f *fakeFactsRepo) Update(_ context.Context, id int64, patch map[string]int) (*models.Fact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updatedID, f.updatePatch = id, patch
	return &models.Fact{ID: id, VotesInteresting: patch[models.ColumnVotesInteresting]}, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	f *fakeFactsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), r: newFakeRefreshRepo(), f: &fakeFactsRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Facts(dbx.DBTX) factsrepo.Repository                 { return m.f }
