package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB wires a sqlmock connection behind the MySQL dialector so we can
// assert the SQL the repository generates.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestList_FilterSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE tasks\\.assigned_to = \\? AND tasks\\.status IN \\(\\?,\\?\\)").
		WithArgs(7, "pending", "overdue").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	// empty result set keeps the preloads from issuing further queries
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE tasks\\.assigned_to = \\? AND tasks\\.status IN \\(\\?,\\?\\) ORDER BY tasks\\.due_date ASC LIMIT").
		WithArgs(7, "pending", "overdue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	assignedTo := uint64(7)
	tasks, total, err := repo.List(TaskFilter{
		AssignedTo: &assignedTo,
		Statuses:   []models.TaskStatus{models.TaskStatusPending, models.TaskStatusOverdue},
		SortBy:     "due_date",
		SortDesc:   false,
		Page:       2,
		PageSize:   10,
	})

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, int64(2), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnknownSortColumnFallsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	// an unsafe sort column must never reach the ORDER BY clause
	mock.ExpectQuery("SELECT \\* FROM `tasks` ORDER BY tasks\\.created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.List(TaskFilter{
		SortBy:   "id; DROP TABLE tasks",
		SortDesc: true,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_SearchMatchesTitleDescriptionTags(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	where := regexp.QuoteMeta("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ? OR LOWER(tasks.tags) LIKE ?")

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE \\(?"+where).
		WithArgs("%review%", "%review%", "%review%").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE \\(?"+where).
		WithArgs("%review%", "%review%", "%review%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.List(TaskFilter{Search: "Review", SortDesc: true})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_CascadesInOneTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `task_comments` WHERE task_id = \\?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `time_entries` WHERE task_id = \\?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `task_dependencies` WHERE task_id = \\? OR depends_on_id = \\?").
		WithArgs(3, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `tasks` WHERE `tasks`\\.`id` = \\?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(3)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `task_comments` WHERE task_id = \\?").
		WithArgs(3).
		WillReturnError(gorm.ErrInvalidTransaction)
	mock.ExpectRollback()

	err := repo.Delete(3)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
