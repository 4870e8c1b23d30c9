package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(kv ...string) []Param {
	out := make([]Param, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Param{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestNormalize_Operator(t *testing.T) {
	t.Parallel()

	raw := params(
		"name", "operator1",
		"namespace", "operator1-ns",
		"timeout", "30m",
		"kubeconfig", "/tmp/kubeconfig",
		"target-namespaces", "ns1, ns2,,",
		"iib", "registry/iib:123",
		"zeta", "1",
		"alpha", "2",
	)

	req, err := Normalize(KindOperator, ActionInstall, raw, ControlKeys(KindOperator))
	require.NoError(t, err)

	assert.Equal(t, "operator1", req.Name)
	assert.Equal(t, KindOperator, req.Kind)
	assert.Equal(t, "operator1-ns", req.Namespace)
	assert.Equal(t, 30*time.Minute, req.Timeout)
	assert.Equal(t, int64(1800), req.TimeoutSeconds())
	assert.Equal(t, "/tmp/kubeconfig", req.Kubeconfig)
	assert.Equal(t, []string{"ns1", "ns2"}, req.TargetNamespaces)
	assert.Equal(t, "registry/iib:123", req.OverrideImage)
	assert.Equal(t, DefaultChannel, req.Channel)
	assert.Equal(t, DefaultSource, req.Source)
	assert.Equal(t, params("zeta", "1", "alpha", "2"), req.Parameters)
}

func TestNormalize_OperatorExplicitChannelAndSource(t *testing.T) {
	t.Parallel()

	raw := params("name", "op", "channel", "fast", "source", "custom")
	req, err := Normalize(KindOperator, ActionInstall, raw, ControlKeys(KindOperator))
	require.NoError(t, err)

	assert.Equal(t, "fast", req.Channel)
	assert.Equal(t, "custom", req.Source)
	assert.Equal(t, DefaultOperatorTimeout, req.Timeout)
	assert.Empty(t, req.OverrideImage)
}

func TestNormalize_OperatorUninstallHasNoInstallDefaults(t *testing.T) {
	t.Parallel()

	req, err := Normalize(KindOperator, ActionUninstall, params("name", "op"), ControlKeys(KindOperator))
	require.NoError(t, err)

	assert.Empty(t, req.Channel)
	assert.Empty(t, req.Source)
}

func TestNormalize_Addon(t *testing.T) {
	t.Parallel()

	raw := params(
		"name", "ocm-addon-test-operator",
		"has-external-resources", "false",
		"rosa", "true",
		"cluster-name", "my-cluster",
		"aws-cluster-test-param", "false",
		"timeout", "45",
	)

	req, err := Normalize(KindAddon, ActionInstall, raw, ControlKeys(KindAddon))
	require.NoError(t, err)

	assert.Equal(t, "my-cluster", req.ClusterName)
	assert.True(t, req.Rosa)
	assert.Equal(t, OCMEnvStage, req.OCMEnv)
	assert.Equal(t, 45*time.Second, req.Timeout)
	assert.Equal(t, params("has-external-resources", "false", "aws-cluster-test-param", "false"), req.Parameters)
}

func TestNormalize_AddonDefaults(t *testing.T) {
	t.Parallel()

	req, err := Normalize(KindAddon, ActionInstall, params("name", "addon"), ControlKeys(KindAddon))
	require.NoError(t, err)

	assert.False(t, req.Rosa)
	assert.Equal(t, OCMEnvStage, req.OCMEnv)
	assert.Equal(t, DefaultAddonTimeout, req.Timeout)
	assert.Empty(t, req.Parameters)
}

func TestNormalize_ParametersNeverContainControlKeys(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindAddon, KindOperator} {
		keys := ControlKeys(kind)
		raw := params("name", "p")
		for k := range keys {
			if k == KeyName || k == KeyTimeout || k == KeyRosa || k == KeyOCMEnv {
				continue
			}
			raw = append(raw, Param{Key: k, Value: "v"})
		}
		raw = append(raw, Param{Key: "extra", Value: "x"})

		req, err := Normalize(kind, ActionInstall, raw, keys)
		require.NoError(t, err)
		for _, p := range req.Parameters {
			assert.False(t, keys.Has(p.Key), "control key %q leaked into %s parameters", p.Key, kind)
		}
		assert.Equal(t, params("extra", "x"), req.Parameters)
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   Kind
		raw    []Param
		target error
	}{
		{"missing name", KindOperator, params("namespace", "ns"), ErrMissingName},
		{"blank name", KindAddon, params("name", "  "), ErrMissingName},
		{"bad timeout", KindOperator, params("name", "op", "timeout", "abc"), ErrInvalidTimeoutFormat},
		{"bad ocm env", KindAddon, params("name", "a", "ocm-env", "dev"), ErrInvalidParameter},
		{"bad rosa", KindAddon, params("name", "a", "rosa", "maybe"), ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.kind, ActionInstall, tt.raw, ControlKeys(tt.kind))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestNormalize_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Normalize(Kind("widget"), ActionInstall, params("name", "w"), NewKeySet(KeyName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown product kind")
}

func TestNormalize_BrewTokenIsControlKey(t *testing.T) {
	t.Parallel()

	req, err := Normalize(KindAddon, ActionInstall, params("name", "managed-odh", "brew-token", "secret", "notification-email", "me@example.com"), ControlKeys(KindAddon))
	require.NoError(t, err)

	assert.Equal(t, "secret", req.BrewToken)
	assert.Equal(t, params("notification-email", "me@example.com"), req.Parameters)
}
