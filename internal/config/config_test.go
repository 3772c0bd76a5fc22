package config_test

import (
	"testing"
	"time"

	"github.com/aretw0/cback/internal/config"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Full(t *testing.T) {
	cfg, err := config.Load("testdata/cback.yaml")
	require.NoError(t, err)

	assert.Equal(t, "testdata/cback.yaml", cfg.Path())
	assert.Equal(t, "/var/lib/cback", cfg.Options.WorkingDir)
	assert.Equal(t, "dependency", cfg.Extensions.OrderMode)
	require.Len(t, cfg.Extensions.Actions, 2)
	assert.Equal(t, 299, cfg.Extensions.Actions[0].Index, "weakly typed input accepts quoted numbers")
	assert.Equal(t, []string{"stage"}, cfg.Extensions.Actions[0].Depends.After)

	require.NotNil(t, cfg.Lock)
	assert.Equal(t, "localhost:6379", cfg.Lock.RedisAddr)
	assert.Equal(t, config.DefaultLockKey, cfg.Lock.Key)
	assert.Equal(t, 2*time.Hour, cfg.Lock.TTL)
	assert.Equal(t, 30*time.Second, cfg.Lock.Wait)
	assert.Equal(t, "localhost:9100", cfg.Metrics.Listen)
}

func TestSnapshot(t *testing.T) {
	cfg, err := config.Load("testdata/cback.yaml")
	require.NoError(t, err)

	snap, err := cfg.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, domain.OrderModeDependency, snap.OrderMode)
	assert.Equal(t, []string{"encrypt", "report"}, snap.ExtensionNames())
	assert.Equal(t, []string{"stage"}, snap.Extensions[0].After)
	assert.Equal(t, []string{"store"}, snap.Extensions[0].Before)

	require.Len(t, snap.Hooks, 3)
	assert.Equal(t, domain.Hook{Action: "store", Command: []string{"mount", "/media/backup"}, Timing: domain.TimingBefore}, snap.Hooks[0])
	assert.Equal(t, domain.TimingAfter, snap.Hooks[1].Timing)
	assert.Equal(t, []string{"/usr/local/bin/notify", "encryption done"}, snap.Hooks[2].Command)

	db1 := domain.PeerTarget{
		Name:         "db1",
		RemoteUser:   "backup",
		RshCommand:   []string{"/usr/bin/ssh", "-B", "-q", "-C"},
		CbackCommand: []string{"/usr/bin/cback"},
	}
	web1 := domain.PeerTarget{
		Name:         "web1",
		RemoteUser:   "www",
		RshCommand:   []string{"/usr/bin/ssh", "-p", "2222"},
		CbackCommand: []string{"/usr/bin/cback"},
	}
	assert.Equal(t, []domain.PeerTarget{db1, web1}, snap.ManagedTargets["collect"])
	assert.Equal(t, []domain.PeerTarget{web1}, snap.ManagedTargets["stage"])
	assert.Equal(t, []domain.PeerTarget{db1}, snap.ManagedTargets["purge"])
	assert.NotContains(t, snap.ManagedTargets, "store")
}

func TestActionCommands(t *testing.T) {
	cfg, err := config.Load("testdata/cback.yaml")
	require.NoError(t, err)

	cmds, err := cfg.ActionCommands()
	require.NoError(t, err)
	require.Contains(t, cmds, "stage")

	argv, err := cmds["stage"].Argv()
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/local/libexec/cback/stage", "--verbose", "--target", "/srv/staging"}, argv)
	assert.Equal(t, map[string]string{"STAGE_MODE": "pull"}, cmds["stage"].Environment)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte("options: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "index", cfg.Extensions.OrderMode)
	assert.Nil(t, cfg.Lock)

	snap, err := cfg.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderModeIndex, snap.Mode())
	assert.Empty(t, snap.ManagedTargets)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "unknown key",
			yaml:    "options:\n  workingdir: /tmp\n",
			message: "workingdir",
		},
		{
			name:    "bad order mode",
			yaml:    "extensions:\n  order_mode: random\n",
			message: "order_mode",
		},
		{
			name:    "extension without module",
			yaml:    "extensions:\n  actions:\n    - name: encrypt\n      function: run\n",
			message: "module",
		},
		{
			name:    "extension shadows builtin",
			yaml:    "extensions:\n  actions:\n    - name: collect\n      module: exec\n      function: /bin/true\n",
			message: "shadows a built-in",
		},
		{
			name:    "duplicate extension",
			yaml:    "extensions:\n  actions:\n    - {name: a, module: exec, function: /bin/true}\n    - {name: a, module: exec, function: /bin/false}\n",
			message: "more than once",
		},
		{
			name:    "hook with both timings",
			yaml:    "options:\n  hooks:\n    - {action: collect, before: ls, after: ls}\n",
			message: "exactly one of before and after",
		},
		{
			name:    "hook for unknown action",
			yaml:    "options:\n  hooks:\n    - {action: nosuch, before: ls}\n",
			message: "unknown action [nosuch]",
		},
		{
			name:    "unterminated hook quote",
			yaml:    "options:\n  hooks:\n    - {action: collect, before: 'echo \"oops'}\n",
			message: "invalid command",
		},
		{
			name:    "peer without name",
			yaml:    "peers:\n  - managed: true\n",
			message: "name",
		},
		{
			name:    "duplicate peer",
			yaml:    "peers:\n  - name: db1\n  - name: db1\n",
			message: "peer [db1] is declared more than once",
		},
		{
			name:    "unknown managed action",
			yaml:    "peers:\n  - name: db1\n    managed: true\n    managed_actions: [bogus]\n",
			message: "unknown action [bogus]",
		},
		{
			name:    "dependency on unknown action",
			yaml:    "extensions:\n  order_mode: dependency\n  actions:\n    - {name: a, module: exec, function: /bin/true, depends: {after: [nosuch]}}\n",
			message: "depends on unknown action [nosuch]",
		},
		{
			name:    "lock without address",
			yaml:    "lock:\n  key: pool\n",
			message: "redis_addr",
		},
		{
			name:    "command for non builtin",
			yaml:    "options:\n  action_commands:\n    all:\n      command: /bin/true\n",
			message: "not a built-in action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := config.Parse([]byte("options: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load("testdata/nosuch.yaml")
	assert.Error(t, err)
}
