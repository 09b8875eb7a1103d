package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "restitch.dev/pkg/restitch/internal/model"
)

func TestScanCmd_LoadsPlanAndRuns(t *testing.T) {
	fake := &fakeWorkflow{}

	cmd := newRootCmd()
	cmd.AddCommand(newScanCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = fake
	defer func() { workflow = originalWorkflow }()

	planPath := writePlanFile(t)

	cmd.SetArgs([]string{"scan", "--plan", planPath})
	err := cmd.Execute()
	require.NoError(t, err)

	require.Len(t, fake.scanArgs, 1)
	args := fake.scanArgs[0]
	assert.Equal(t, m.Path(planPath), args.PlanPath)
	assert.Equal(t, m.Path(".restitch-reports"), args.Reports)
	assert.Equal(t, []string{"DE", "HI"}, args.Plan.Units)
}

func TestScanCmd_PositionalPlanOverridesFlag(t *testing.T) {
	fake := &fakeWorkflow{}

	cmd := newRootCmd()
	cmd.AddCommand(newScanCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = fake
	defer func() { workflow = originalWorkflow }()

	planPath := writePlanFile(t)

	cmd.SetArgs([]string{"scan", planPath})
	err := cmd.Execute()
	require.NoError(t, err)

	require.Len(t, fake.scanArgs, 1)
	assert.Equal(t, m.Path(planPath), fake.scanArgs[0].PlanPath)
}

func TestNewScanCmd(t *testing.T) {
	cmd := newScanCmd()

	assert.Equal(t, "scan [plan]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, scanLongDescription, cmd.Long)
}
