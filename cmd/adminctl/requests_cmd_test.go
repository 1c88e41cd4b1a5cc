package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry-admin-backend/internal/domain"
)

func TestPrintRequests(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	err := printRequests(&buf, []domain.RegistrationRequest{
		{ID: "r1", Name: "Jane", Email: "jane@x.org", Status: domain.RequestStatusPending, CreatedAt: created},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "STATUS")
	assert.Contains(t, buf.String(), "jane@x.org")
	assert.Contains(t, buf.String(), "2026-03-01T09:00:00Z")
}

func TestRootCmd_RejectsUnknownJob(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"jobs", "run", "reticulate-splines"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
