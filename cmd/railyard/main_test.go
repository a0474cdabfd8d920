package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/railyard/pkg/snap"
)

const yardLayout = `
; two straights joined in the middle, plus a loose one
(straight "s1" :length 100)
(straight "s2" :from (vec3 100 0 0) :length 100)
(join "s1" "b" "s2" "a")
(straight "loose" :from (vec3 0 0 50) :length 100)
`

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yard.rail")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckText(t *testing.T) {
	out, err := run(t, "check", writeLayout(t, yardLayout))
	require.NoError(t, err)

	assert.Contains(t, out, "3 pieces, 6 connectors, 2 connected")
	assert.Contains(t, out, "network 1: 2 pieces, 2 open ends (open) [s1 s2]")
	assert.Contains(t, out, "network 2: 1 pieces, 2 open ends (open) [loose]")
}

func TestCheckJSON(t *testing.T) {
	out, err := run(t, "check", "--json", writeLayout(t, yardLayout))
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 3, r.Pieces)
	assert.Equal(t, 2, r.Connected)
	require.Len(t, r.Networks, 2)
	assert.Empty(t, r.Findings)
	assert.False(t, r.HasErrors)
}

func TestCheckReportsFindings(t *testing.T) {
	// Joined ends 50mm apart are still connected but draw a warning.
	path := writeLayout(t, `
(straight "s1" :length 100)
(straight "s2" :from (vec3 150 0 0) :length 100)
(join "s1" "b" "s2" "a")
`)
	out, err := run(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 connected")
	assert.Contains(t, out, "do not coincide")
}

func TestCheckLayoutError(t *testing.T) {
	_, err := run(t, "check", writeLayout(t, `(join "a" "b" "c" "d")`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "piece not found")
}

func TestCheckMissingFile(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "nope.rail"))
	require.Error(t, err)
}

func TestSnap(t *testing.T) {
	path := writeLayout(t, yardLayout)

	out, err := run(t, "snap", path, "--at", "200,0,0", "--radius", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "s2.b\t0.000")
	assert.NotContains(t, out, "loose")

	out, err = run(t, "snap", path, "--at", "100,0,50", "--radius", "60")
	require.NoError(t, err)
	assert.Equal(t, "loose.b\t0.000\ns1.b\t50.000\ns2.a\t50.000\n", out)

	out, err = run(t, "snap", path, "--at", "100,0,0", "--radius", "1", "--free-only")
	require.NoError(t, err)
	assert.Contains(t, out, "no connectors within 1mm")
}

func TestSnapFreeOnlyKeepsUnsharedNode(t *testing.T) {
	// n9 is held by a single connector, so it is not a connection.
	path := writeLayout(t, `
(piece "lone" (connector "a" :node "n9" :at (vec3 0 0 0)))
`)
	out, err := run(t, "snap", path, "--at", "0,0,0", "--radius", "1", "--free-only")
	require.NoError(t, err)
	assert.Equal(t, "lone.a\t0.000\n", out)
}

func TestSnapJSONUsesConfiguredRadius(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "railyard.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("snap_radius: 0\n"), 0o644))

	out, err := run(t, "--config", cfg, "--json", "snap", writeLayout(t, yardLayout), "--at", "100,0,0")
	require.NoError(t, err)

	var cands []snap.Candidate
	require.NoError(t, json.Unmarshal([]byte(out), &cands))
	require.Len(t, cands, 2)
	assert.Equal(t, "s1.b", cands[0].Ref().String())
	assert.Equal(t, "s2.a", cands[1].Ref().String())
}

func TestSnapBadProbe(t *testing.T) {
	_, err := run(t, "snap", writeLayout(t, yardLayout), "--at", "1,2")
	require.Error(t, err)

	_, err = run(t, "snap", writeLayout(t, yardLayout), "--at", "1,2,3", "--radius=-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, snap.ErrInvalidArgument)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "railyard.yaml")
	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "snap_radius: 10")
}

func TestBadConfigFails(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "railyard.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("snap_radius: -3\n"), 0o644))
	_, err := run(t, "--config", cfg, "check", writeLayout(t, yardLayout))
	require.Error(t, err)
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3(" 1, -2.5 ,3")
	require.NoError(t, err)
	assert.Equal(t, -2.5, v.Y)

	_, err = parseVec3("1,x,3")
	assert.Error(t, err)
}

func TestWatchCallsOnChange(t *testing.T) {
	path := writeLayout(t, yardLayout)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, logger, path, func() { calls.Add(1) })
	}()

	// Keep writing until the watcher has been registered and reports.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(yardLayout+"\n"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	// Writes to other files in the directory are ignored.
	time.Sleep(200 * time.Millisecond)
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.rail"), nil, 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
