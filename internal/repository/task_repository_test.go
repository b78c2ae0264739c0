package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskRepositoryTestSuite runs the repository against an in-memory SQLite database
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(&models.Task{}))
	suite.repo = NewTaskRepository(suite.db)
}

func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskRepositoryTestSuite) createTask(title string, status models.TaskStatus, priority models.TaskPriority, node string) *models.Task {
	task := &models.Task{Title: title, Status: status, Priority: priority, Node: node}
	suite.Require().NoError(suite.repo.Create(task))
	return task
}

func (suite *TaskRepositoryTestSuite) TestCreate_AssignsIDAndTimestamps() {
	task := suite.createTask("Caída nodo", models.TaskStatusBacklog, models.TaskPriorityHigh, "Nodo Pirque")

	assert.NotZero(suite.T(), task.ID)
	assert.False(suite.T(), task.CreatedAt.IsZero())

	found, err := suite.repo.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Nodo Pirque", found.Node)
	assert.Equal(suite.T(), models.TaskPriorityHigh, found.Priority)
}

func (suite *TaskRepositoryTestSuite) TestCreate_ColumnDefaults() {
	task := &models.Task{Title: "sin enums"}
	suite.Require().NoError(suite.repo.Create(task))

	found, err := suite.repo.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusBacklog, found.Status)
	assert.Equal(suite.T(), models.TaskPriorityMedium, found.Priority)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_NotFound() {
	_, err := suite.repo.FindByID(404)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestList_OrderAndFilters() {
	suite.createTask("a", models.TaskStatusBacklog, models.TaskPriorityLow, "Nodo Buin")
	suite.createTask("b", models.TaskStatusDone, models.TaskPriorityHigh, "Nodo Pirque")
	suite.createTask("c", models.TaskStatusBacklog, models.TaskPriorityHigh, "Nodo Pirque")

	tasks, total, err := suite.repo.List(TaskFilter{})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 3, total)
	assert.Equal(suite.T(), []string{"a", "b", "c"}, titles(tasks))

	backlog := models.TaskStatusBacklog
	tasks, total, err = suite.repo.List(TaskFilter{Status: &backlog})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 2, total)
	assert.Equal(suite.T(), []string{"a", "c"}, titles(tasks))

	high := models.TaskPriorityHigh
	tasks, _, err = suite.repo.List(TaskFilter{Priority: &high, Node: "Nodo Pirque"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []string{"b", "c"}, titles(tasks))
}

func (suite *TaskRepositoryTestSuite) TestList_Pagination() {
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		suite.createTask(title, models.TaskStatusBacklog, models.TaskPriorityMedium, "")
	}

	tasks, total, err := suite.repo.List(TaskFilter{
		Pagination: &utils.PaginationParams{Page: 2, Limit: 2, Offset: 2},
	})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 5, total)
	assert.Equal(suite.T(), []string{"c", "d"}, titles(tasks))
}

func (suite *TaskRepositoryTestSuite) TestList_Empty() {
	tasks, total, err := suite.repo.List(TaskFilter{})
	suite.Require().NoError(err)
	assert.NotNil(suite.T(), tasks)
	assert.Empty(suite.T(), tasks)
	assert.Zero(suite.T(), total)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ReplacesFields() {
	task := suite.createTask("a", models.TaskStatusBacklog, models.TaskPriorityLow, "Nodo Buin")

	task.Title = "a2"
	task.Status = models.TaskStatusStandBy
	task.Node = ""
	suite.Require().NoError(suite.repo.Update(task))

	found, err := suite.repo.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "a2", found.Title)
	assert.Equal(suite.T(), models.TaskStatusStandBy, found.Status)
	assert.Empty(suite.T(), found.Node)
}

func (suite *TaskRepositoryTestSuite) TestDelete() {
	task := suite.createTask("a", models.TaskStatusBacklog, models.TaskPriorityLow, "")

	suite.Require().NoError(suite.repo.Delete(task.ID))

	_, err := suite.repo.FindByID(task.ID)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
	assert.ErrorIs(suite.T(), suite.repo.Delete(task.ID), gorm.ErrRecordNotFound)
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

// newMockRepository wires the repository to go-sqlmock through the postgres dialect
func newMockRepository(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return NewTaskRepository(db), mock
}

func TestList_CountErrorIsReturned(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.List(TaskFilter{})

	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_StatusFilterSQL(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE status = \$1`).
		WithArgs("Stand-by").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE status = \$1 ORDER BY id ASC`).
		WithArgs("Stand-by").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority"}).
			AddRow(7, "Esperando repuesto", "Stand-by", "Alta"))

	standBy := models.TaskStatusStandBy
	tasks, total, err := repo.List(TaskFilter{Status: &standBy})

	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	if assert.Len(t, tasks, 1) {
		assert.Equal(t, uint64(7), tasks[0].ID)
		assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NoRowsIsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE "tasks"."id" = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(42)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InsertErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.Create(&models.Task{Title: "x", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityLow})

	assert.EqualError(t, err, "duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}
