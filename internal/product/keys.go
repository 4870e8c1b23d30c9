package product

// Entry keys with a meaning of their own. Everything else in an entry is a
// product parameter.
const (
	KeyName             = "name"
	KeyTimeout          = "timeout"
	KeyKubeconfig       = "kubeconfig"
	KeyNamespace        = "namespace"
	KeyChannel          = "channel"
	KeySource           = "source"
	KeyTargetNamespaces = "target-namespaces"
	KeyIIB              = "iib"
	KeyRosa             = "rosa"
	KeyClusterName      = "cluster-name"
	KeyOCMEnv           = "ocm-env"
	KeyBrewToken        = "brew-token"
	KeyOCMToken         = "ocm-token"
)

// Operator install defaults.
const (
	DefaultChannel = "stable"
	DefaultSource  = "redhat-operators"
)

// OCM environments an add-on can target.
const (
	OCMEnvStage      = "stage"
	OCMEnvProduction = "production"
)

// KeySet is a set of entry keys.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

var controlKeys = map[Kind]KeySet{
	KindAddon: NewKeySet(
		KeyName, KeyTimeout, KeyRosa, KeyClusterName, KeyOCMEnv, KeyBrewToken, KeyOCMToken,
	),
	KindOperator: NewKeySet(
		KeyName, KeyTimeout, KeyKubeconfig, KeyNamespace, KeyChannel, KeySource,
		KeyTargetNamespaces, KeyIIB, KeyBrewToken,
	),
}

// ControlKeys returns the keys of kind that are never forwarded as parameters.
func ControlKeys(kind Kind) KeySet {
	return controlKeys[kind]
}
