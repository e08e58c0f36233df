package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Execute installs the process-wide slog default, so tests that run it are
// not parallel.

type runResult struct {
	code   int
	stdout string
	stderr string
}

type env struct {
	dir string
}

func newEnv(t *testing.T) env {
	t.Helper()
	return env{dir: t.TempDir()}
}

func (e env) run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	base := []string{
		"--config", filepath.Join(e.dir, "config.toml"),
		"--db", filepath.Join(e.dir, "ledger.db"),
	}
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), append(base, args...), strings.NewReader(stdin), &out, &errOut)
	return runResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestOpsListGolden(t *testing.T) {
	res := newEnv(t).run(t, "", "ops")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "ops_list", []byte(res.stdout))
}

func TestOpsFilterJSON(t *testing.T) {
	res := newEnv(t).run(t, "", "--format", "json", "ops", "get_currenc")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var infos []struct {
		ID    string `json:"id"`
		Scope string `json:"scope"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
	require.Len(t, infos, 2)
	require.Equal(t, "get_currencies", infos[0].ID)
	require.Equal(t, "get_currency", infos[1].ID)
}

func TestInvokeTextPrintsData(t *testing.T) {
	e := newEnv(t)

	res := e.run(t, "", "invoke", "create_ledger", `{"name":"Household","base_currency":"USD"}`)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &created))
	require.Positive(t, created.ID)

	res = e.run(t, "", "invoke", "delete_ledger", `{"id":1}`)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	require.Equal(t, "ok\n", res.stdout)
}

func TestInvokeReadsArgumentsFromStdin(t *testing.T) {
	e := newEnv(t)

	res := e.run(t, `{"name":"  groceries "}`, "invoke", "create_tag", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var tag struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tag))
	require.Equal(t, "groceries", tag.Name)
	require.NotNil(t, tag.Color)
	require.Equal(t, "#868e96", *tag.Color)
}

func TestInvokeJSONEnvelopeOnFailure(t *testing.T) {
	res := newEnv(t).run(t, "", "--format", "json", "invoke", "get_account", `{"id":42}`)
	require.Equal(t, ExitFailure, res.code)
	require.Contains(t, res.stderr, "get_account (not_found)")

	var resp struct {
		InvocationID string `json:"invocation_id"`
		OK           bool   `json:"ok"`
		Error        struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.False(t, resp.OK)
	require.NotEmpty(t, resp.InvocationID)
	require.Equal(t, "not_found", resp.Error.Kind)
}

func TestInvokeExitCodes(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name string
		args []string
		code int
	}{
		{"unknown operation", []string{"invoke", "transfer_funds"}, ExitFailure},
		{"unknown field", []string{"invoke", "create_tag", `{"name":"x","colour":"red"}`}, ExitFailure},
		{"malformed json", []string{"invoke", "create_tag", `{"name":`}, ExitCommandError},
		{"missing operation", []string{"invoke"}, ExitCommandError},
		{"bad format flag", []string{"--format", "yaml", "ops"}, ExitCommandError},
	}
	for _, tc := range cases {
		res := e.run(t, "", tc.args...)
		require.Equal(t, tc.code, res.code, "%s: %s", tc.name, res.stderr)
		require.Contains(t, res.stderr, "error:", tc.name)
	}
}

func TestAccountsFormatsBalances(t *testing.T) {
	e := newEnv(t)

	res := e.run(t, "", "invoke", "create_account",
		`{"name":"Checking","account_type":"debit","balance":"1234.5","currency":"usd"}`)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	res = e.run(t, "", "invoke", "create_account",
		`{"name":"Card","account_type":"credit","balance":"0","currency":"USD",
		  "credit_limit":"5000","owed":"250.75","billing_date":"2024-01-05","due_date":"2024-01-25"}`)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = e.run(t, "", "accounts")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	require.Contains(t, res.stdout, "$1,234.50")
	require.Contains(t, res.stdout, "owed $250.75 of $5,000.00, due 2024-01-25")

	res = e.run(t, "", "--format", "json", "accounts")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var rows []accountRow
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "debit", rows[0].Type)
	require.Equal(t, "credit", rows[1].Type)
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	require.Equal(t, "$12.35", FormatAmount(decimal.RequireFromString("12.345"), "USD"))
	require.Equal(t, "¥1,500", FormatAmount(decimal.RequireFromString("1500"), "JPY"))
	require.Equal(t, "7.10 XYZ", FormatAmount(decimal.RequireFromString("7.1"), "XYZ"))
}

func TestConfigInit(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "config.toml")

	res := e.run(t, "", "config", "init")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	require.Contains(t, res.stdout, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "ledger.db")

	res = e.run(t, "", "config", "init")
	require.Equal(t, ExitCommandError, res.code)
	require.Contains(t, res.stderr, "--force")

	res = e.run(t, "", "config", "init", "--force")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
}
