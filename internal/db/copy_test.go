package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"run-1", "sub-1"},
		{"run-2", "sub-2"},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"validation_runs"}, []string{"id", "submission_id"}).
		WillReturnResult(2)

	n, err := CopyFrom(context.Background(), mock, "validation_runs", []string{"id", "submission_id"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromEmptyRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyFrom(context.Background(), mock, "validation_runs", []string{"id"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
