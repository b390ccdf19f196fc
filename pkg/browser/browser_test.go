package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveStaleLocks(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "SingletonCookie"), []byte("x"), 0600))
	require.NoError(t, os.Symlink("host-12345", filepath.Join(dir, "SingletonLock")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Preferences"), []byte("{}"), 0600))

	removed, err := RemoveStaleLocks(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SingletonLock", "SingletonCookie"}, removed)

	_, err = os.Lstat(filepath.Join(dir, "SingletonLock"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "Preferences"))
	assert.NoError(t, err)
}

func TestRemoveStaleLocksEmptyProfile(t *testing.T) {
	removed, err := RemoveStaleLocks(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestTimeoutMs(t *testing.T) {
	assert.Equal(t, 0.0, TimeoutMs(context.Background(), 0))
	assert.Equal(t, 5000.0, TimeoutMs(context.Background(), 5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := TimeoutMs(ctx, time.Minute)
	assert.LessOrEqual(t, got, 1000.0)
	assert.Greater(t, got, 0.0)

	assert.Equal(t, 1000.0, TimeoutMs(context.Background(), time.Second))

	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()
	assert.Equal(t, 1.0, TimeoutMs(expired, time.Minute))
}

func TestCtxErr(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, ContextErr(context.Background(), boom))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ContextErr(ctx, boom), context.Canceled)
}

func TestLaunchOptionsDefaults(t *testing.T) {
	opts := LaunchOptions{Args: []string{"--lang=en"}}.withDefaults()

	require.NotNil(t, opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultBlockedResources, opts.BlockedResources)

	args := opts.args()
	assert.Equal(t, "--disable-blink-features=AutomationControlled", args[0])
	assert.Equal(t, "--lang=en", args[len(args)-1])
	assert.Len(t, args, len(DefaultArgs)+1)
}

func TestLaunchOptionsKeepsExplicitEmptyBlockList(t *testing.T) {
	opts := LaunchOptions{BlockedResources: []string{}}.withDefaults()
	assert.Empty(t, opts.BlockedResources)
}

func TestLaunchRequiresInitialize(t *testing.T) {
	m := NewManager(nil)
	_, err := m.LaunchPersistent(context.Background(), LaunchOptions{ProfileDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	_, err = m.LaunchPersistent(context.Background(), LaunchOptions{})
	assert.Error(t, err)
}

func TestShutdownWithoutInitialize(t *testing.T) {
	assert.NoError(t, NewManager(nil).Shutdown())
}
