package pidfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "factory.pid")
	p := pidfile.New(path)

	// Act
	require.NoError(t, p.Acquire())

	// Assert
	pid, err := p.Running()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, p.Release())
	_, err = p.Running()
	assert.ErrorIs(t, err, pidfile.ErrNotRunning)
}

func TestPIDFile_SecondAcquireFailsWhileOwnerLives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.pid")
	require.NoError(t, pidfile.New(path).Acquire())

	err := pidfile.New(path).Acquire()

	var running *pidfile.ErrAlreadyRunning
	require.True(t, errors.As(err, &running))
	assert.Equal(t, os.Getpid(), running.PID)
}

func TestPIDFile_ReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	require.NoError(t, pidfile.New(path).Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))
}

func TestPIDFile_ReleaseMissingFileIsFine(t *testing.T) {
	p := pidfile.New(filepath.Join(t.TempDir(), "absent.pid"))

	assert.NoError(t, p.Release())
}
