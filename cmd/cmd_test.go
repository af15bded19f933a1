package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"campusbite/config"
	"campusbite/internal/apptest"
	"campusbite/models"
	"campusbite/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) (cfgPath, localPath string) {
	t.Helper()
	dir := t.TempDir()
	localPath = filepath.Join(dir, "local.yaml")
	cfgPath = filepath.Join(dir, "campusbite.yaml")
	body := "backend:\n  driver: sqlite\n" +
		"sqlite:\n  path: " + filepath.Join(dir, "campusbite.db") + "\n" +
		"auth:\n  jwt_secret: cli-test-secret\n  login_limit: 0\n" +
		"files:\n  dir: " + filepath.Join(dir, "uploads") + "\n" +
		"retry:\n  max_retries: 1\n  base_delay: 1ms\n" +
		"local:\n  path: " + localPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, localPath
}

func run(t *testing.T, cfgPath string, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	return rootCmd.ExecuteContext(context.Background())
}

func TestCLIOrderFlow(t *testing.T) {
	cfgPath, localPath := writeTestConfig(t)
	image := filepath.Join(t.TempDir(), "shiro.png")
	require.NoError(t, os.WriteFile(image, apptest.PNG, 0o600))

	require.NoError(t, run(t, cfgPath, "signup", "--email", "abebe@campus.edu", "--password", apptest.Password,
		"--username", "abebe", "--role", "hotel_manager"))
	require.NoError(t, run(t, cfgPath, "login", "--email", "abebe@campus.edu", "--password", apptest.Password))

	token, ok, err := session.NewFileKV(localPath).Get(session.SessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	require.NoError(t, run(t, cfgPath, "foods", "post", "--name", "Shiro", "--desc", "Shiro with injera",
		"--price", "80", "--category", "lunch", "--image", image))
	require.NoError(t, run(t, cfgPath, "foods", "verify"))
	require.NoError(t, run(t, cfgPath, "logout"))

	_, ok, err = session.NewFileKV(localPath).Get(session.SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, run(t, cfgPath, "signup", "--email", "hana@campus.edu", "--password", apptest.Password,
		"--username", "hana", "--role", "student"))
	require.NoError(t, run(t, cfgPath, "login", "--email", "hana@campus.edu", "--password", apptest.Password))
	require.NoError(t, run(t, cfgPath, "whoami"))

	rt, err := openRuntime(context.Background(), cfg)
	require.NoError(t, err)
	a, err := rt.deviceApp()
	require.NoError(t, err)
	items, err := a.Catalog.ListFoodPosts(context.Background(), 1, 10)
	rt.Close()
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, run(t, cfgPath, "orders", "create", "--item", items[0].ID, "--phone", "0911223344"))

	rt, err = openRuntime(context.Background(), cfg)
	require.NoError(t, err)
	defer rt.Close()
	a, err = rt.deviceApp()
	require.NoError(t, err)
	active, err := a.Sessions.EnsureActive(context.Background(), "")
	require.NoError(t, err)
	orders, err := a.Workflow.CustomerOrders(context.Background(), active.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPending, orders[0].Status)
}

func TestCLIRequiresSession(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	err := run(t, cfgPath, "whoami")
	require.Error(t, err)
	assert.True(t, session.IsSessionError(err))
}

func TestCLIPrefs(t *testing.T) {
	cfgPath, localPath := writeTestConfig(t)
	require.NoError(t, run(t, cfgPath, "prefs", "set", "--theme", "dark", "--language", "am"))

	p, err := session.LoadPreferences(session.NewFileKV(localPath))
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, p.Theme)
	assert.Equal(t, "am", p.Language)

	assert.Error(t, run(t, cfgPath, "prefs", "set", "--theme", "sepia"))
}

func TestAppwriteDeviceAppReportsBadConfig(t *testing.T) {
	cfg := &config.Config{Backend: config.BackendConfig{Driver: "appwrite"}}
	cfg.Local.Path = filepath.Join(t.TempDir(), "local.yaml")

	rt := &runtime{cfg: cfg}
	_, err := rt.deviceApp()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint and project id are required")

	cfg.Appwrite.Endpoint = "http://localhost:1/v1"
	cfg.Appwrite.ProjectID = "campusbite"
	a, err := rt.deviceApp()
	require.NoError(t, err)
	assert.NotNil(t, a.Client.Orders)
}
