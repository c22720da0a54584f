package test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/rosterly/store"
)

func TestEmployeeStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	manager, err := createTestingManager(ctx, ts)
	require.NoError(t, err)

	rate := 42.5
	employee, err := ts.CreateEmployee(ctx, &store.Employee{
		ManagerID:   manager.ID,
		FirstName:   "Grace",
		LastName:    "Hopper",
		Nickname:    "Amazing",
		Mobile:      "+15550001111",
		Email:       "grace-" + uuid.NewString()[:8] + "@example.com",
		DefaultRate: &rate,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, employee.ID)
	require.NotZero(t, employee.CreatedTs)

	got, err := ts.GetEmployee(ctx, &store.FindEmployee{ID: &employee.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Grace", got.FirstName)
	require.Equal(t, "Amazing", got.Nickname)
	require.NotNil(t, got.DefaultRate)
	require.Equal(t, 42.5, *got.DefaultRate)
	require.Nil(t, got.Embedding)

	// Duplicate email.
	_, err = ts.CreateEmployee(ctx, &store.Employee{
		ManagerID: manager.ID,
		FirstName: "Other",
		Email:     employee.Email,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	missing := uuid.New()
	got, err = ts.GetEmployee(ctx, &store.FindEmployee{ID: &missing})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEmployeeStoreFilters(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	manager, err := createTestingManager(ctx, ts)
	require.NoError(t, err)
	other, err := createTestingManager(ctx, ts)
	require.NoError(t, err)

	_, err = ts.CreateEmployee(ctx, &store.Employee{ManagerID: manager.ID, FirstName: "Linus", LastName: "Torvalds", Nickname: "penguin", Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)
	_, err = ts.CreateEmployee(ctx, &store.Employee{ManagerID: manager.ID, FirstName: "Ken", LastName: "Thompson", Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)
	_, err = ts.CreateEmployee(ctx, &store.Employee{ManagerID: other.ID, FirstName: "Lina", LastName: "Penguin", Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)

	byManager, err := ts.ListEmployees(ctx, &store.FindEmployee{ManagerID: &manager.ID})
	require.NoError(t, err)
	require.Len(t, byManager, 2)

	first := "LIN"
	byFirst, err := ts.ListEmployees(ctx, &store.FindEmployee{ManagerID: &manager.ID, FirstNameContains: &first})
	require.NoError(t, err)
	require.Len(t, byFirst, 1)
	require.Equal(t, "Linus", byFirst[0].FirstName)

	text := "penguin"
	byText, err := ts.ListEmployees(ctx, &store.FindEmployee{Text: &text})
	require.NoError(t, err)
	require.Len(t, byText, 2)

	byTextAndManager, err := ts.ListEmployees(ctx, &store.FindEmployee{Text: &text, ManagerID: &other.ID})
	require.NoError(t, err)
	require.Len(t, byTextAndManager, 1)
	require.Equal(t, "Lina", byTextAndManager[0].FirstName)

	paged, err := ts.ListEmployees(ctx, &store.FindEmployee{ManagerID: &manager.ID, Offset: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, paged, 1)
}
