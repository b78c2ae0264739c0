package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/isp-kanban/internal/board"
	"github.com/yukikurage/isp-kanban/internal/client"
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/repository"
	"github.com/yukikurage/isp-kanban/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBoardAgainstAPI(t *testing.T, opts ...board.Option) (*board.Board, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Task{}))

	service := services.NewTaskService(repository.NewTaskRepository(db), nil)
	srv := httptest.NewServer(SetupRouter(service, "*"))
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})

	return board.New(client.NewClient(srv.URL), opts...), db
}

func TestBoardAgainstAPI_Lifecycle(t *testing.T) {
	b, db := newBoardAgainstAPI(t, board.WithConfirmer(board.ConfirmFunc(func(string) bool { return true })))
	ctx := context.Background()

	require.NoError(t, b.LoadAll(ctx))
	assert.Empty(t, b.Tasks())

	created, err := b.Create(ctx, models.Task{Title: "Cambiar ONU", Node: "Nodo Buin"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.TaskStatusBacklog, created.Status)
	assert.Equal(t, models.TaskPriorityMedium, created.Priority)

	moved, err := b.Move(ctx, created, +1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, moved.Status)

	var stored models.Task
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, models.TaskStatusInProgress, stored.Status)

	moved.Description = "ONU reemplazada"
	_, err = b.Update(ctx, moved)
	require.NoError(t, err)

	require.NoError(t, b.LoadAll(ctx))
	reloaded, ok := b.Task(created.ID)
	require.True(t, ok)
	assert.Equal(t, "ONU reemplazada", reloaded.Description)

	require.NoError(t, b.Remove(ctx, created.ID))
	assert.Empty(t, b.Tasks())

	var count int64
	db.Model(&models.Task{}).Count(&count)
	assert.Zero(t, count)
}

func TestBoardAgainstAPI_DragPersists(t *testing.T) {
	b, db := newBoardAgainstAPI(t)
	ctx := context.Background()

	first, err := b.Create(ctx, models.Task{Title: "uno"})
	require.NoError(t, err)
	_, err = b.Create(ctx, models.Task{Title: "dos"})
	require.NoError(t, err)

	err = b.ReorderByDrag(ctx, board.DragEvent{
		TaskID:      first.ID,
		Source:      board.Position{Column: models.TaskStatusBacklog, Index: 0},
		Destination: &board.Position{Column: models.TaskStatusStandBy, Index: 0},
	})
	require.NoError(t, err)
	b.Wait()

	var stored models.Task
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, models.TaskStatusStandBy, stored.Status)

	standBy := slices.Collect(b.TasksByColumn(models.TaskStatusStandBy))
	require.Len(t, standBy, 1)
	assert.Equal(t, first.ID, standBy[0].ID)
}

func TestBoardAgainstAPI_ServerRejectsUnknownTask(t *testing.T) {
	b, _ := newBoardAgainstAPI(t)

	_, err := b.Update(context.Background(), models.Task{ID: 42, Title: "fantasma"})

	var apiErr *client.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}
