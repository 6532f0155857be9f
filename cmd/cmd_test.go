package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diabetescheck/advice"
	"diabetescheck/predict"
)

const (
	scalerJSON = `{"mean":[3.845,120.894,69.105,20.536,79.799,31.993,0.472,33.241],` +
		`"scale":[3.367,31.952,19.343,15.942,115.169,7.879,0.331,11.753]}`
	modelJSON = `{"coef":[0.41,1.1,-0.25,0.01,-0.14,0.69,0.31,0.18],"intercept":-0.86}`
	// splits on scaled glucose only
	treeJSON = `[{"feature_idx":1,"threshold":0.5,"left_child":1,"right_child":2},` +
		`{"is_leaf":true,"class_label":0},{"is_leaf":true,"class_label":1}]`
)

var (
	healthy        = []string{"0", "85", "66", "29", "0", "26.6", "0.351", "31"}
	atRisk         = []string{"8", "183", "64", "0", "0", "23.3", "0.672", "32"}
	missingInsulin = []string{"2", "148", "72", "35", "", "33.6", "0.627", "50"}
)

type fixture struct {
	dir        string
	fileConfig string
	sqlConfig  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	scaler := write("scaler.json", scalerJSON)
	model := write("model.json", modelJSON)
	write("tree.json", treeJSON)
	dbPath := filepath.Join(dir, "store.db")

	return fixture{
		dir: dir,
		fileConfig: write("file.yaml", fmt.Sprintf(`
artifacts:
  source: file
  scaler: {type: standard, path: %q}
  classifier: {type: linear, path: %q}
database:
  path: %q
`, scaler, model, dbPath)),
		sqlConfig: write("sqlite.yaml", fmt.Sprintf(`
artifacts:
  source: sqlite
  scaler: {name: scaler}
  classifier: {name: model}
database:
  path: %q
`, dbPath)),
	}
}

func run(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	f := newFixture(t)

	out, err := run(append([]string{"--config", f.fileConfig, "predict"}, healthy...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.NonDiabetic)+"\n", out)

	out, err = run(append([]string{"--config", f.fileConfig, "predict"}, atRisk...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.Diabetic)+"\n", out)
}

func TestPredictCommandRejectsInput(t *testing.T) {
	f := newFixture(t)

	_, err := run(append([]string{"--config", f.fileConfig, "predict"}, missingInsulin...)...)
	require.Error(t, err)
	assert.Equal(t, advice.MissingFieldsMessage, err.Error())

	_, err = run("--config", f.fileConfig, "predict", "1", "2")
	assert.Error(t, err)
}

func TestPredictCommandNegativeValues(t *testing.T) {
	f := newFixture(t)
	values := []string{"-1", "85", "66", "29", "0", "26.6", "0.351", "31"}

	out, err := run(append([]string{"--config", f.fileConfig, "predict", "--"}, values...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.NonDiabetic)+"\n", out)

	_, err = run(append([]string{"--config", f.fileConfig, "predict"}, values...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put -- before the values")
}

func TestPredictCommandMissingArtifact(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "model.json")))

	_, err := run(append([]string{"--config", f.fileConfig, "predict"}, healthy...)...)
	var loadErr *predict.ArtifactLoadError
	require.True(t, errors.As(err, &loadErr), "got %v", err)
	assert.Equal(t, "classifier", loadErr.Name)
}

func TestArtifactsImportAndServeFromStore(t *testing.T) {
	f := newFixture(t)

	out, err := run("--config", f.sqlConfig, "artifacts", "import", "--name", "scaler", "--kind", "standard", "--file", filepath.Join(f.dir, "scaler.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "stored scaler (standard")

	_, err = run("--config", f.sqlConfig, "artifacts", "import", "--name", "model", "--kind", "linear", "--file", filepath.Join(f.dir, "model.json"))
	require.NoError(t, err)

	out, err = run("--config", f.sqlConfig, "artifacts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `model\s+linear`, out)
	assert.Regexp(t, `scaler\s+standard`, out)

	out, err = run(append([]string{"--config", f.sqlConfig, "predict"}, atRisk...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.Diabetic)+"\n", out)
}

func TestPredictFromStoredDecisionTree(t *testing.T) {
	f := newFixture(t)

	_, err := run("--config", f.sqlConfig, "artifacts", "import", "--name", "scaler", "--kind", "standard", "--file", filepath.Join(f.dir, "scaler.json"))
	require.NoError(t, err)
	_, err = run("--config", f.sqlConfig, "artifacts", "import", "--name", "model", "--kind", "decision_tree", "--file", filepath.Join(f.dir, "tree.json"))
	require.NoError(t, err)

	out, err := run(append([]string{"--config", f.sqlConfig, "predict"}, healthy...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.NonDiabetic)+"\n", out)

	out, err = run(append([]string{"--config", f.sqlConfig, "predict"}, atRisk...)...)
	require.NoError(t, err)
	assert.Equal(t, advice.Document(advice.Diabetic)+"\n", out)
}

func TestArtifactsImportRejectsBrokenArtifact(t *testing.T) {
	f := newFixture(t)

	_, err := run("--config", f.sqlConfig, "artifacts", "import", "--name", "model", "--kind", "standard", "--file", filepath.Join(f.dir, "model.json"))
	require.Error(t, err)

	out, err := run("--config", f.sqlConfig, "artifacts", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "model")
}
