package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	createQuery = `^INSERT\s+INTO\s+devices\s+\(id\)\s+VALUES\s+\(\$1\)$`
	touchQuery  = `^UPDATE\s+devices\s+SET\s+last_seen_at\s*=\s*NOW\(\)\s+WHERE\s+id\s*=\s*\$1$`
)

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(createQuery).WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), "d1"))

	mock.ExpectExec(createQuery).WithArgs("d2").WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), "d2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouch(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(touchQuery).WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Touch(context.Background(), "d1"))

	mock.ExpectExec(touchQuery).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Touch(context.Background(), "gone"), common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
