// Package scenario provides a high-level test scenario that combines a Scene,
// a command registry, and a runtime Context to provide a terse API for
// integration tests.
package scenario

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/internal/actions"
	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/output"
	"fcmm.dev/fcmm/internal/runtime"
	"fcmm.dev/fcmm/testhelpers"
)

// Start is the first time handed out by a scenario clock.
var Start = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// Operator is the operator name scenarios use for backup branches.
const Operator = "tester"

// Scenario represents a high-level test scenario that combines a Scene,
// a Registry, and a runtime Context.
type Scenario struct {
	T        *testing.T
	Scene    *testhelpers.Scene
	Context  *runtime.Context
	Registry *actions.Registry
	Output   *bytes.Buffer
}

// NewScenario creates a new Scenario with an optional setup function. Temp and
// backup directories live inside the scene; git runs with testhelpers.GitEnv.
// The clock advances one second per reading so backup names never collide.
// Scenarios never change the process working directory and are safe in
// parallel tests.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()

	scene := testhelpers.NewScene(t, setup)

	settings := config.DefaultSettings()
	settings.TempPath = scene.Path("temp")
	settings.BackupPath = scene.Path("backup")
	settings.Operator = Operator

	var out bytes.Buffer
	splog, err := output.NewSplogWithOptions(output.SplogOptions{Writer: &out})
	require.NoError(t, err)

	rctx := runtime.NewContextInDir(settings, splog, scene.Dir)
	rctx.GitEnv = testhelpers.GitEnv()
	tick := 0
	rctx.Now = func() time.Time {
		now := Start.Add(time.Duration(tick) * time.Second)
		tick++
		return now
	}

	return &Scenario{
		T:        t,
		Scene:    scene,
		Context:  rctx,
		Registry: actions.NewRegistry(),
		Output:   &out,
	}
}

// NewFcmmScenario creates a scenario whose repository is already an fcmm
// repository: master carries .fcmm4git and is pushed to origin. With hasPkg,
// lb-pkg is created from master and pushed too.
func NewFcmmScenario(t *testing.T, hasPkg bool) *Scenario {
	t.Helper()
	return NewScenario(t, func(scene *testhelpers.Scene) error {
		if err := testhelpers.RemoteSceneSetup(scene); err != nil {
			return err
		}
		meta := &config.Metadata{RemoteURL: scene.Remote, HasPkg: hasPkg}
		if err := config.WriteMetadata(afero.NewOsFs(), scene.Dir, meta); err != nil {
			return err
		}
		if err := scene.Repo.RunGitCommand("add", config.MetadataFileName); err != nil {
			return err
		}
		if err := scene.Repo.RunGitCommand("commit", "-q", "-m", "init by fcmm"); err != nil {
			return err
		}
		if err := scene.Repo.PushBranch("origin", "master"); err != nil {
			return err
		}
		if !hasPkg {
			return nil
		}
		if err := scene.Repo.CreateBranch("lb-pkg"); err != nil {
			return err
		}
		return scene.Repo.PushBranch("origin", "lb-pkg")
	})
}

// Run dispatches a command in the scenario's directory.
func (s *Scenario) Run(cmd, raw string) actions.Result {
	s.T.Helper()
	return s.Registry.Dispatch(context.Background(), s.Context, cmd, raw)
}

// MustRun dispatches a command and fails the test unless it succeeds.
func (s *Scenario) MustRun(cmd, raw string) actions.Result {
	s.T.Helper()
	res := s.Run(cmd, raw)
	require.Truef(s.T, res.OK(), "%s %s failed: %s\n%s", cmd, raw, res.Message, s.Output.String())
	return res
}

// Checkout checks out a branch.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CheckoutBranch(branch))
	return s
}

// CreateBranch creates and checks out a new branch.
func (s *Scenario) CreateBranch(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateAndCheckoutBranch(name))
	return s
}

// CommitChange creates a file change and commits it.
func (s *Scenario) CommitChange(name, message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit(message, name))
	return s
}

// Tag creates an annotated tag at HEAD.
func (s *Scenario) Tag(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateTag(name))
	return s
}

// Push pushes a branch to origin.
func (s *Scenario) Push(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.PushBranch("origin", branch))
	return s
}

// WithUncommittedChange modifies a tracked file without committing it.
func (s *Scenario) WithUncommittedChange(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit("committed", name))
	require.NoError(s.T, s.Scene.Repo.CreateChange("unstaged content", name, true))
	return s
}

// ExpectBranch asserts the checked out branch.
func (s *Scenario) ExpectBranch(expected string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectCurrentBranch(s.T, s.Scene.Repo, expected)
	return s
}

// ExpectRemoteBranch asserts that origin carries branch at localRef.
func (s *Scenario) ExpectRemoteBranch(branch, localRef string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectRemoteBranch(s.T, s.Scene.Repo, "origin", branch, localRef)
	return s
}

// Clone clones origin next to the scenario repository, as a second developer would.
func (s *Scenario) Clone(name string) *testhelpers.GitRepo {
	s.T.Helper()
	clone, err := testhelpers.NewGitRepoFromURL(s.Scene.Path(name), s.Scene.Remote)
	require.NoError(s.T, err)
	return clone
}
