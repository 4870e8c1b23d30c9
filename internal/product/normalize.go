package product

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingName is returned for an entry without a name key.
	ErrMissingName = errors.New("product name is required")
	// ErrInvalidParameter is returned for a control key with an unusable value.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Normalize builds a Request from a raw entry.
//
// Keys in controlKeys populate the request's typed fields; every other key is
// kept in Parameters in input order. Defaults are only injected for keys that
// are absent from raw.
func Normalize(kind Kind, action Action, raw []Param, controlKeys KeySet) (*Request, error) {
	req := &Request{Kind: kind}
	control := make(map[string]string)

	for _, p := range raw {
		if controlKeys.Has(p.Key) {
			control[p.Key] = p.Value
			continue
		}
		req.Parameters = append(req.Parameters, p)
	}

	req.Name = strings.TrimSpace(control[KeyName])
	if req.Name == "" {
		return nil, fmt.Errorf("%s entry: %w", kind, ErrMissingName)
	}

	switch kind {
	case KindAddon:
		req.Timeout = DefaultAddonTimeout
	case KindOperator:
		req.Timeout = DefaultOperatorTimeout
	default:
		return nil, fmt.Errorf("%s: unknown product kind %q", req.Name, kind)
	}

	if v, ok := control[KeyTimeout]; ok {
		timeout, err := ParseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, req.Name, err)
		}
		req.Timeout = timeout
	}

	req.BrewToken = control[KeyBrewToken]

	var err error
	if kind == KindAddon {
		err = normalizeAddon(req, control)
	} else {
		normalizeOperator(req, action, control)
	}
	if err != nil {
		return nil, err
	}

	return req, nil
}

func normalizeAddon(req *Request, control map[string]string) error {
	req.ClusterName = control[KeyClusterName]

	req.OCMEnv = OCMEnvStage
	if v, ok := control[KeyOCMEnv]; ok {
		switch v {
		case OCMEnvStage, OCMEnvProduction:
			req.OCMEnv = v
		default:
			return fmt.Errorf("addon %s: %w: %s %q, supported: %s, %s",
				req.Name, ErrInvalidParameter, KeyOCMEnv, v, OCMEnvStage, OCMEnvProduction)
		}
	}

	if v, ok := control[KeyRosa]; ok && v != "" {
		rosa, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("addon %s: %w: %s %q", req.Name, ErrInvalidParameter, KeyRosa, v)
		}
		req.Rosa = rosa
	}

	return nil
}

func normalizeOperator(req *Request, action Action, control map[string]string) {
	req.Kubeconfig = control[KeyKubeconfig]
	req.Namespace = control[KeyNamespace]
	req.OverrideImage = strings.TrimSpace(control[KeyIIB])
	req.TargetNamespaces = splitList(control[KeyTargetNamespaces])
	req.Channel = control[KeyChannel]
	req.Source = control[KeySource]

	if action != ActionInstall {
		return
	}
	if _, ok := control[KeyChannel]; !ok {
		req.Channel = DefaultChannel
	}
	if _, ok := control[KeySource]; !ok {
		req.Source = DefaultSource
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
