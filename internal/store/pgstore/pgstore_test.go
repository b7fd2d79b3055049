package pgstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/store"
	"github.com/briangreenhill/gamepicker/internal/store/storetest"
)

func TestStore(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping postgres store test")
	}

	ctx := context.Background()
	s, err := Open(ctx, dbURL)
	require.NoError(t, err)
	defer s.Close()

	storetest.Run(t, func(t *testing.T) store.Store {
		require.NoError(t, s.Reset(ctx))
		return s
	})
}
