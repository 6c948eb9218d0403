package proc_test

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/proc"
)

func TestProber_Exists_Self(t *testing.T) {
	prober := proc.NewProber()
	assert.True(t, prober.Exists(os.Getpid()))
}

func TestProber_Exists_InvalidPid(t *testing.T) {
	prober := proc.NewProber()
	assert.False(t, prober.Exists(0))
	assert.False(t, prober.Exists(-1))
}

func TestProber_Exists_ExitedProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	require.NoError(t, cmd.Wait())

	// After Wait the process has been reaped, so the pid is gone.
	assert.False(t, proc.NewProber().Exists(pid))
}
