package deploy

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cronyo/internal/aws"
	"cronyo/internal/config"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/mholt/archives"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deployFixture struct {
	iam      *fakeIAM
	lambda   *fakeLambda
	deployer *Deployer
	slept    []time.Duration
}

func testConfig() config.Config {
	return config.Config{
		Namespace: "cronyo",
		SecretKey: "0123456789abcdef0123456789abcdef",
		Profile:   "dev",
	}
}

func writeArtifacts(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, BootstrapName), []byte("binary:"+name), 0o755))
	}
	return dir
}

func newDeployFixture(t *testing.T, cfg config.Config, iamAPI *fakeIAM, lambdaAPI *fakeLambda) *deployFixture {
	t.Helper()
	f := &deployFixture{iam: iamAPI, lambda: lambdaAPI}
	dir := writeArtifacts(t, "http-post", "http-get", "cronyo-report")
	f.deployer = NewDeployer(aws.NewRoles(iamAPI), aws.NewFunctions(lambdaAPI), cfg, Options{ArtifactsDir: dir}, zerolog.Nop())
	f.deployer.sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	return f
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := archives.Zip{}.Extract(context.Background(), bytes.NewReader(data), func(_ context.Context, f archives.FileInfo) error {
		if f.IsDir() {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		content, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		files[f.NameInArchive] = string(content)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestComponents(t *testing.T) {
	cfg := testConfig()
	cfg.Namespace = "jobs"
	cfg.ExtraWiring = []config.Wiring{
		{Lambda: config.FunctionWiring{FunctionName: "jobs-report", MemorySize: 256, Timeout: 60}},
		{Lambda: config.FunctionWiring{FunctionName: "jobs-sync", Handler: "main", MemorySize: 128, Timeout: 30, Artifact: "sync"}},
	}

	components := Components(cfg)
	require.Len(t, components, 4)
	assert.Equal(t, Component{FunctionName: "jobs-http_post", Handler: BootstrapName, MemorySize: 128, Timeout: 30, Artifact: "http-post"}, components[0])
	assert.Equal(t, "jobs-http_get", components[1].FunctionName)
	assert.Equal(t, Component{FunctionName: "jobs-report", Handler: BootstrapName, MemorySize: 256, Timeout: 60, Artifact: "jobs-report"}, components[2])
	assert.Equal(t, "main", components[3].Handler)
	assert.Equal(t, filepath.Join("dist", "sync", BootstrapName), components[3].BootstrapPath("dist"))
}

func TestBootstrapPathAcceptsBinaryPath(t *testing.T) {
	c := Component{Artifact: "custom/bootstrap"}
	assert.Equal(t, filepath.Join("dist", "custom", "bootstrap"), c.BootstrapPath("dist"))
}

func TestPackage(t *testing.T) {
	dir := writeArtifacts(t, "http-get")

	data, err := Package(context.Background(), filepath.Join(dir, "http-get", BootstrapName), []byte("namespace: cronyo\n"))
	require.NoError(t, err)

	files := unzip(t, data)
	assert.Equal(t, map[string]string{
		BootstrapName: "binary:http-get",
		ConfigName:    "namespace: cronyo\n",
	}, files)
}

func TestPackageMissingArtifact(t *testing.T) {
	_, err := Package(context.Background(), filepath.Join(t.TempDir(), "missing", BootstrapName), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCreatesRoleAndFunctions(t *testing.T) {
	f := newDeployFixture(t, testConfig(), newFakeIAM(), newFakeLambda())

	results, err := f.deployer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"cronyo"}, f.iam.created)
	assert.Contains(t, f.iam.policies["cronyo/cronyo"], "lambda:InvokeFunction")
	assert.Contains(t, f.iam.policies["cronyo/cronyo"], "logs:PutLogEvents")
	assert.Equal(t, []time.Duration{rolePropagationDelay}, f.slept)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Created)
		assert.Equal(t, "1", r.Version)
		assert.Equal(t, functionArn(r.FunctionName)+":live", r.AliasArn)

		fn := f.lambda.functions[r.FunctionName]
		require.NotNil(t, fn)
		assert.Equal(t, lambdatypes.RuntimeProvidedal2023, fn.runtime)
		assert.Equal(t, BootstrapName, fn.handler)
		assert.Equal(t, "1", fn.aliases[LiveAlias])
	}

	files := unzip(t, f.lambda.functions["cronyo-http_get"].code)
	assert.Equal(t, "binary:http-get", files[BootstrapName])
	bundled, err := config.Parse([]byte(files[ConfigName]))
	require.NoError(t, err)
	assert.Equal(t, "cronyo", bundled.Namespace)
	assert.Equal(t, testConfig().SecretKey, bundled.SecretKey)
	assert.Empty(t, bundled.Profile)
}

func TestRunUpdatesExistingFunctionAndCleansUp(t *testing.T) {
	lambdaAPI := newFakeLambda()
	lambdaAPI.seed("cronyo-http_post", 6, "6")
	lambdaAPI.seed("cronyo-http_get", 2, "2")
	f := newDeployFixture(t, testConfig(), newFakeIAM("cronyo"), lambdaAPI)

	results, err := f.deployer.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.iam.created)
	assert.Empty(t, f.slept)

	require.Len(t, results, 2)
	assert.False(t, results[0].Created)
	assert.Equal(t, "7", results[0].Version)

	post := lambdaAPI.functions["cronyo-http_post"]
	assert.Equal(t, "7", post.aliases[LiveAlias])
	assert.Equal(t, []string{"3", "4", "5", "6", "7"}, post.versions)
	assert.Equal(t, []string{"cronyo-http_post:1", "cronyo-http_post:2"}, lambdaAPI.deleted)
	assert.Equal(t, lambdatypes.RuntimeProvidedal2023, post.runtime)

	get := lambdaAPI.functions["cronyo-http_get"]
	assert.Equal(t, []string{"1", "2", "3"}, get.versions)
	assert.Equal(t, "3", get.aliases[LiveAlias])
}

func TestRunDeploysExtraWiring(t *testing.T) {
	cfg := testConfig()
	cfg.ExtraWiring = []config.Wiring{{Lambda: config.FunctionWiring{FunctionName: "cronyo-report", MemorySize: 256, Timeout: 60}}}
	f := newDeployFixture(t, cfg, newFakeIAM("cronyo"), newFakeLambda())

	results, err := f.deployer.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "cronyo-report", results[2].FunctionName)
	assert.Equal(t, "binary:cronyo-report", unzip(t, f.lambda.functions["cronyo-report"].code)[BootstrapName])
}

func TestRunRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SecretKey = ""
	f := newDeployFixture(t, cfg, newFakeIAM(), newFakeLambda())

	_, err := f.deployer.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.iam.created)
}

func TestRunMissingArtifact(t *testing.T) {
	f := newDeployFixture(t, testConfig(), newFakeIAM("cronyo"), newFakeLambda())
	f.deployer.opts.ArtifactsDir = t.TempDir()

	results, err := f.deployer.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Empty(t, f.lambda.functions)
}

func TestRollback(t *testing.T) {
	lambdaAPI := newFakeLambda()
	lambdaAPI.seed("cronyo-http_post", 3, "3")
	lambdaAPI.seed("cronyo-http_get", 3, "1")
	f := newDeployFixture(t, testConfig(), newFakeIAM("cronyo"), lambdaAPI)

	results, err := f.deployer.Rollback(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPreviousVersion)
	assert.Contains(t, err.Error(), "cronyo-http_get")

	assert.Equal(t, []RollbackResult{{FunctionName: "cronyo-http_post", From: "3", To: "2"}}, results)
	assert.Equal(t, "2", lambdaAPI.functions["cronyo-http_post"].aliases[LiveAlias])
	assert.Equal(t, "1", lambdaAPI.functions["cronyo-http_get"].aliases[LiveAlias])
}

func TestRollbackMissingFunction(t *testing.T) {
	f := newDeployFixture(t, testConfig(), newFakeIAM("cronyo"), newFakeLambda())

	results, err := f.deployer.Rollback(context.Background(), LiveAlias)
	require.Error(t, err)
	assert.True(t, aws.IsNotFound(err))
	assert.Empty(t, results)
}

func TestPreflight(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	_, err := Preflight(ctx, "", aws.NewIdentity(&fakeSTS{}), log)
	assert.ErrorIs(t, err, ErrRegionNotSet)

	_, err = Preflight(ctx, "us-east-1", aws.NewIdentity(&fakeSTS{err: errAccessDenied}), log)
	assert.ErrorIs(t, err, ErrCredentials)

	account, err := Preflight(ctx, "us-east-1", aws.NewIdentity(&fakeSTS{}), log)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", account)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
