package test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/rosterly/store"
)

func TestClientStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	manager, err := createTestingManager(ctx, ts)
	require.NoError(t, err)

	client, err := createTestingClient(ctx, ts, manager.ID, "Acme Hardware")
	require.NoError(t, err)

	got, err := ts.GetClient(ctx, &store.FindClient{ID: &client.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Acme Hardware", got.ClientName)
	require.Nil(t, got.DefaultRate)
	require.Nil(t, got.Embedding)

	_, err = ts.CreateClient(ctx, &store.Client{ManagerID: manager.ID, ClientName: "Copy", Email: client.Email})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = createTestingClient(ctx, ts, manager.ID, "Globex")
	require.NoError(t, err)

	name := "acme"
	byName, err := ts.ListClients(ctx, &store.FindClient{ClientNameContains: &name})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	text := "retail"
	byText, err := ts.ListClients(ctx, &store.FindClient{ManagerID: &manager.ID, Text: &text})
	require.NoError(t, err)
	require.Len(t, byText, 2)

	unknown := uuid.New()
	none, err := ts.ListClients(ctx, &store.FindClient{ManagerID: &unknown})
	require.NoError(t, err)
	require.Empty(t, none)
}
