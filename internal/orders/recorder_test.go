package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepository struct {
	*MemoryRepository
	err error
}

func (f failingRepository) CreateOrder(context.Context, *Order) error {
	return f.err
}

func TestRecorder_RecordsForSession(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	repo := NewMemoryRepository()
	c := testConfirmation()

	require.NoError(t, NewRecorder(repo, log).ForSession("s1").Record(ctx, c))

	o, err := repo.GetOrderByID(ctx, uuid.MustParse(c.OrderID))
	require.NoError(t, err)
	assert.Equal(t, "s1", o.SessionID)
}

func TestRecorder_DuplicateIsNotAnError(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	sink := NewRecorder(NewMemoryRepository(), log).ForSession("s1")
	c := testConfirmation()

	require.NoError(t, sink.Record(ctx, c))
	assert.NoError(t, sink.Record(ctx, c))
}

func TestRecorder_RepositoryError(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	boom := errors.New("connection refused")
	sink := NewRecorder(failingRepository{NewMemoryRepository(), boom}, log).ForSession("s1")

	err := sink.Record(context.Background(), testConfirmation())
	assert.ErrorIs(t, err, boom)
}
