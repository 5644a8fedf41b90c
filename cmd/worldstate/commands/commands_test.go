package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)
	c.SetArgs(args)
	err := c.Execute(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_Fissures(t *testing.T) {
	path := writeFile(t, "live.html", `<html><body>
<table id="fissures-table"><tr><th>Neo</th></tr>
<tr><td><b>Survival</b> <span class="badge" data-expiry="1">1h 5m</span> <span>(30-35) - Corpus @ Cinxia, Ceres</span></td></tr>
</table></body></html>`)

	out, err := runCLI(t, "parse", "--kind", "fissures", "--at", "2026-03-01T12:00:00Z", path)
	require.NoError(t, err)

	var got struct {
		Fissures []struct {
			Relic    string `json:"relic"`
			Type     string `json:"type"`
			Location string `json:"location"`
			Expiry   string `json:"expiry"`
		} `json:"fissures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Fissures, 1)
	assert.Equal(t, "Neo", got.Fissures[0].Relic)
	assert.Equal(t, "Survival", got.Fissures[0].Type)
	assert.Equal(t, "Cinxia, Ceres", got.Fissures[0].Location)
	assert.Equal(t, "2026-03-01T13:05:00Z", got.Fissures[0].Expiry)
}

func TestParse_Arbitration(t *testing.T) {
	// 1772366400 = 2026-03-01T12:00:00Z
	path := writeFile(t, "arbys.html", `<div id="log">
<b data-timestamp="1772366400">12:00 • Defense - Infested @ Hydron, Sedna (S tier)</b>
</div>`)

	out, err := runCLI(t, "parse", "-k", "arbitration", "--at", "2026-03-01T12:30:00Z", path)
	require.NoError(t, err)

	var got struct {
		Current struct {
			Node   string `json:"node"`
			Tier   string `json:"tier"`
			Active bool   `json:"active"`
		} `json:"current"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Hydron", got.Current.Node)
	assert.Equal(t, "S", got.Current.Tier)
	assert.True(t, got.Current.Active)
}

func TestParse_UnknownKind(t *testing.T) {
	path := writeFile(t, "x.html", "<html></html>")
	_, err := runCLI(t, "parse", "--kind", "sorties", path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := runCLI(t, "parse", filepath.Join(t.TempDir(), "nope.html"))
	assert.ErrorContains(t, err, "parse: read")
}

func TestOnce_BadLogLevel(t *testing.T) {
	_, err := runCLI(t, "once", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestOnce_BadConfig(t *testing.T) {
	path := writeFile(t, "ws.yaml", "fetch:\n  engine: telnet\n")
	_, err := runCLI(t, "once", "--config", path)
	assert.ErrorContains(t, err, "unknown fetch engine")
}
