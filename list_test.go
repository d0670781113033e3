package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListController_LoadAndClassify(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(
		Employee{ID: 1, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)},
		Employee{ID: 2, Name: "B", Role: "QA Tester", StartDate: date(2023, 1, 1), EndDate: datePtr(2023, 6, 1)},
	)
	lc := NewListController(store, zap.NewNop(), time.Second)

	lc.Load(ctx)

	assert.Len(t, lc.Employees(), 2)
	assert.Equal(t, []int64{1}, ids(lc.Current(date(2024, 6, 1))))
	assert.Equal(t, []int64{2}, ids(lc.Previous(date(2024, 6, 1))))
}

func TestListController_LoadFailureEmptiesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(Employee{ID: 1, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)})
	logger, logs := newObservedLogger(t)
	lc := NewListController(store, logger, time.Second)

	lc.Load(ctx)
	require.Len(t, lc.Employees(), 1)

	store.failGetAll = true
	lc.Load(ctx)

	assert.Empty(t, lc.Employees())
	assert.Equal(t, 1, logs.FilterMessage("error loading employees").Len())
}

func TestListController_DeleteThenUndo(t *testing.T) {
	ctx := context.Background()
	five := Employee{ID: 5, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	store := newMemStore(
		five,
		Employee{ID: 6, Name: "B", Role: "QA Tester", StartDate: date(2024, 1, 1)},
	)
	lc := NewListController(store, zap.NewNop(), time.Minute)
	lc.Load(ctx)

	require.True(t, lc.Delete(ctx, five))
	assert.NotContains(t, ids(lc.Employees()), int64(5))
	_, ok := store.get(5)
	assert.False(t, ok)

	pending, ok := lc.UndoPending()
	require.True(t, ok)
	assert.Equal(t, int64(5), pending.ID)

	require.True(t, lc.Undo(ctx))
	_, ok = store.get(5)
	assert.True(t, ok)

	employees := lc.Employees()
	assert.Equal(t, int64(5), employees[len(employees)-1].ID)

	_, ok = lc.UndoPending()
	assert.False(t, ok)
	assert.False(t, lc.Undo(ctx))
}

func TestListController_UndoWindowExpires(t *testing.T) {
	ctx := context.Background()
	e := Employee{ID: 5, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	store := newMemStore(e)
	lc := NewListController(store, zap.NewNop(), 20*time.Millisecond)
	lc.Load(ctx)

	require.True(t, lc.Delete(ctx, e))

	assert.Eventually(t, func() bool {
		_, ok := lc.UndoPending()
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.False(t, lc.Undo(ctx))
	assert.Equal(t, 0, store.count())
}

func TestListController_StaleTimerKeepsNewerUndo(t *testing.T) {
	ctx := context.Background()
	first := Employee{ID: 1, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	second := Employee{ID: 2, Name: "B", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	store := newMemStore(first, second)
	lc := NewListController(store, zap.NewNop(), 200*time.Millisecond)
	lc.Load(ctx)

	require.True(t, lc.Delete(ctx, first))
	time.Sleep(120 * time.Millisecond)
	require.True(t, lc.Delete(ctx, second))
	time.Sleep(120 * time.Millisecond)

	pending, ok := lc.UndoPending()
	require.True(t, ok)
	assert.Equal(t, int64(2), pending.ID)
}

func TestListController_DeleteFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	e := Employee{ID: 5, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	store := newMemStore(e)
	lc := NewListController(store, zap.NewNop(), time.Second)
	lc.Load(ctx)

	store.failWrites = true
	assert.False(t, lc.Delete(ctx, e))
	assert.Len(t, lc.Employees(), 1)

	_, ok := lc.UndoPending()
	assert.False(t, ok)
}

func TestListController_ReplaceAndSave(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(Employee{ID: 1, Name: "Old", Role: "QA Tester", StartDate: date(2020, 1, 1)})
	lc := NewListController(store, zap.NewNop(), time.Second)

	lc.Replace([]Employee{
		{ID: 10, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)},
		{ID: 11, Name: "B", Role: "QA Tester", StartDate: date(2024, 1, 1)},
	})
	require.True(t, lc.Save(ctx))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 11}, ids(got))

	store.failWrites = true
	assert.False(t, lc.Save(ctx))
}

func TestListController_WithSQLiteRepo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	e := Employee{ID: 5, Name: "A", Role: "QA Tester", StartDate: date(2024, 1, 1)}
	require.NoError(t, repo.Add(ctx, e))

	lc := NewListController(repo, zap.NewNop(), time.Minute)
	lc.Load(ctx)

	require.True(t, lc.Delete(ctx, e))
	require.True(t, lc.Undo(ctx))

	employees, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(employees))
}
