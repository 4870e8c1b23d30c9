package iib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Resolve returns the override image for operatorName.
//
// An explicit override always wins and the index is not consulted. With no
// cluster version or job name, resolution is disabled and "" is returned.
func Resolve(idx Index, operatorName, explicitOverride, clusterVersion, jobName string) (string, error) {
	if explicitOverride != "" {
		return explicitOverride, nil
	}
	if clusterVersion == "" || jobName == "" {
		return "", nil
	}
	key, err := VersionKey(clusterVersion)
	if err != nil {
		return "", err
	}
	return idx.Lookup(key, jobName, operatorName)
}

// Resolver resolves override images against an index loaded lazily from a
// Source. The index is loaded at most once and shared read-only by
// concurrent callers.
type Resolver struct {
	source Source
	log    logr.Logger

	once  sync.Once
	index Index
	err   error
}

// NewResolver returns a Resolver reading from source. source may be nil when
// only explicit overrides are expected.
func NewResolver(source Source, log logr.Logger) *Resolver {
	return &Resolver{source: source, log: log}
}

// Resolve returns the override image for operatorName, loading the index on
// first use.
func (r *Resolver) Resolve(ctx context.Context, operatorName, explicitOverride, clusterVersion, jobName string) (string, error) {
	if explicitOverride != "" {
		r.log.V(1).Info("Using explicit IIB", "operator", operatorName, "iib", explicitOverride)
		return explicitOverride, nil
	}
	if clusterVersion == "" || jobName == "" {
		return "", nil
	}

	idx, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	image, err := Resolve(idx, operatorName, "", clusterVersion, jobName)
	if err != nil {
		return "", err
	}
	if image != "" {
		r.log.Info("Resolved IIB from index", "operator", operatorName, "iib", image, "job", jobName)
	}
	return image, nil
}

func (r *Resolver) load(ctx context.Context) (Index, error) {
	r.once.Do(func() {
		if r.source == nil {
			r.err = errors.New("no IIB index source configured")
			return
		}
		r.log.Info("Loading IIB index", "source", r.source.String())
		r.index, r.err = r.source.Load(ctx)
		if r.err != nil {
			r.err = fmt.Errorf("failed to load IIB index from %s: %w", r.source, r.err)
		}
	})
	return r.index, r.err
}
