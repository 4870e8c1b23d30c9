package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
)

// Cluster-wide pull secret of OpenShift.
const (
	PullSecretNamespace = "openshift-config"
	PullSecretName      = "pull-secret"

	// BrewRegistry serves unreleased operator images referenced by IIB indexes.
	BrewRegistry = "brew.registry.redhat.io"
)

// MergePullSecret sets the auth of registry in the cluster pull secret. It
// reports whether the secret was changed. The update is retried on conflict
// against a freshly read secret.
func (c *Client) MergePullSecret(ctx context.Context, registry, auth string) (bool, error) {
	secrets := c.Clientset.CoreV1().Secrets(PullSecretNamespace)
	changed := false
	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		changed = false
		secret, err := secrets.Get(ctx, PullSecretName, metav1.GetOptions{})
		if err != nil {
			return fmt.Errorf("failed to get secret %s/%s: %w", PullSecretNamespace, PullSecretName, err)
		}

		merged, ok, err := mergeDockerConfig(secret.Data[corev1.DockerConfigJsonKey], registry, auth)
		if err != nil {
			return fmt.Errorf("secret %s/%s: %w", PullSecretNamespace, PullSecretName, err)
		}
		if !ok {
			return nil
		}

		if secret.Data == nil {
			secret.Data = map[string][]byte{}
		}
		secret.Data[corev1.DockerConfigJsonKey] = merged
		if _, err := secrets.Update(ctx, secret, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("failed to update secret %s/%s: %w", PullSecretNamespace, PullSecretName, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// mergeDockerConfig rewrites the auths entry of a docker config and keeps
// every other top-level key as is.
func mergeDockerConfig(data []byte, registry, auth string) ([]byte, bool, error) {
	raw := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, false, fmt.Errorf("invalid docker config: %w", err)
		}
	}

	auths := map[string]map[string]any{}
	if v, ok := raw["auths"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &auths); err != nil {
			return nil, false, fmt.Errorf("invalid docker config auths: %w", err)
		}
	}

	if existing, ok := auths[registry]; ok && existing["auth"] == auth {
		return data, false, nil
	}
	auths[registry] = map[string]any{"auth": auth}

	encoded, err := json.Marshal(auths)
	if err != nil {
		return nil, false, err
	}
	raw["auths"] = encoded

	out, err := json.Marshal(raw)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
