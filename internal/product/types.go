package product

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the product type a request targets.
type Kind string

const (
	// KindAddon is a managed add-on installed through the OCM API.
	KindAddon Kind = "addon"
	// KindOperator is an OLM operator installed through a cluster connection.
	KindOperator Kind = "operator"
)

// Action is the operation performed on a product.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
)

// SupportedActions lists the accepted values of --action.
var SupportedActions = []Action{ActionInstall, ActionUninstall}

// ParseAction converts user input into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionInstall:
		return ActionInstall, nil
	case ActionUninstall:
		return ActionUninstall, nil
	case "":
		return "", fmt.Errorf("action must be provided, supported actions: %v", SupportedActions)
	default:
		return "", fmt.Errorf("unsupported action %q, supported actions: %v", s, SupportedActions)
	}
}

// Title returns the capitalized action name used as a log section.
func (a Action) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Param is a single user-supplied key/value pair.
type Param struct {
	Key   string `json:"id"`
	Value string `json:"value"`
}

// Request is one product to install or uninstall.
//
// Requests are built by Normalize and are read-only afterwards. Target is
// attached by the caller once the product's cluster has been resolved; it is
// never serialized, so a worker process re-creates it from the other fields.
type Request struct {
	Kind       Kind          `json:"kind"`
	Name       string        `json:"name"`
	Parameters []Param       `json:"parameters,omitempty"`
	Timeout    time.Duration `json:"timeout"`

	// ClusterName is the OCM cluster of an add-on, or the kubeconfig
	// cluster of an operator (informational).
	ClusterName string `json:"clusterName,omitempty"`
	OCMEnv      string `json:"ocmEnv,omitempty"`
	Rosa        bool   `json:"rosa,omitempty"`

	Kubeconfig       string   `json:"kubeconfig,omitempty"`
	Namespace        string   `json:"namespace,omitempty"`
	Channel          string   `json:"channel,omitempty"`
	Source           string   `json:"source,omitempty"`
	TargetNamespaces []string `json:"targetNamespaces,omitempty"`
	OverrideImage    string   `json:"overrideImage,omitempty"`

	// BrewToken is a credential and is never serialized; workers read it
	// from their environment.
	BrewToken string `json:"-"`

	Target any `json:"-"`
}

// TimeoutSeconds returns the request timeout in whole seconds.
func (r *Request) TimeoutSeconds() int64 {
	return int64(r.Timeout / time.Second)
}

// Param returns the value of a non-control parameter.
func (r *Request) Param(key string) (string, bool) {
	return Lookup(r.Parameters, key)
}

// WithTarget returns a shallow copy of r carrying the given target handle.
func (r *Request) WithTarget(target any) *Request {
	c := *r
	c.Target = target
	return &c
}

// WithOverrideImage returns a shallow copy of r carrying the given override image.
func (r *Request) WithOverrideImage(image string) *Request {
	c := *r
	c.OverrideImage = image
	return &c
}

func (r *Request) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.Name)
}
