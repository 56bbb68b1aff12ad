package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplogConsole(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("DEBUG", "")
	splog, err := NewSplogWithOptions(SplogOptions{Writer: &buf})
	require.NoError(t, err)

	splog.Info("switched to %s", "master")
	splog.Debug("hidden")
	splog.Warn("careful")
	splog.Error("broken")

	out := buf.String()
	require.Contains(t, out, "switched to master\n")
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "careful")
	require.Contains(t, out, "broken")

	buf.Reset()
	splog.SetQuiet(true)
	splog.Info("nothing")
	splog.Page("nothing")
	require.Empty(t, buf.String())
}

func TestSplogDebugAndFile(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "fcmm.log")
	splog, err := NewSplogWithOptions(SplogOptions{Writer: &buf, Debug: true, LogFile: logFile})
	require.NoError(t, err)

	splog.Debug("execute git %s", "status")
	splog.Info("done")
	require.NoError(t, splog.Close())

	require.Contains(t, buf.String(), "execute git status")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "execute git status")
	require.Contains(t, string(data), "level=DEBUG")
	require.Contains(t, string(data), "done")
}

func TestStylesPlainWhenNotATerminal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	styles := NewStyles(&buf)
	require.False(t, IsTerminal(&buf))
	require.Equal(t, "lb-pkg", styles.Branch("lb-pkg"))
	require.Equal(t, "V1.0", styles.Tag("V1.0"))
}

func TestTable(t *testing.T) {
	t.Parallel()
	styles := NewStyles(&bytes.Buffer{})
	out := Table(styles, [2]string{"COMMAND", "DESCRIPTION"}, []Row{
		{Name: "init", Description: "bind a directory to a remote"},
		{Name: "rollback", Description: "reset a branch"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "COMMAND"))
	require.Contains(t, lines[1], "init")
	// columns are aligned
	require.Equal(t, strings.Index(lines[1], "bind"), strings.Index(lines[2], "reset"))
}
