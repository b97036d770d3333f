package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_RequiresDatabase(t *testing.T) {
	store, err := Connect(context.Background(), Config{URI: "mongodb://localhost:27017"})
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "database name is required")
}

func TestConnect_RejectsMalformedURI(t *testing.T) {
	store, err := Connect(context.Background(), Config{
		URI:      "postgres://localhost",
		Database: "talentsphere",
		Timeout:  100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Nil(t, store)
}
