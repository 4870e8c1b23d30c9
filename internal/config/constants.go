package config

// OCM endpoints.
const (
	// DefaultSSOTokenURL is the Red Hat SSO token endpoint used to exchange
	// an offline OCM token for an access token.
	DefaultSSOTokenURL = "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token"

	OCMProductionURL = "https://api.openshift.com"
	OCMStageURL      = "https://api.stage.openshift.com"
)

// Environment variables read by LoadEnv.
const (
	EnvOCMToken        = "OCM_TOKEN"
	EnvBrewToken       = "BREW_TOKEN"
	EnvJobName         = "JOB_NAME"
	EnvInstallFromIIB  = "INSTALL_FROM_IIB"
	EnvOCPVersion      = "OCP_VERSION"
	EnvIIBFile         = "IIB_FILE"
	EnvIIBS3Bucket     = "IIB_S3_BUCKET"
	EnvIIBS3Key        = "IIB_S3_KEY"
	EnvS3Endpoint      = "S3_ENDPOINT"
	EnvS3Region        = "S3_REGION"
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

// DefaultS3Region is used when no region is configured for the IIB bucket.
const DefaultS3Region = "us-east-1"

// ManagedODHAddon needs a brew token when installed on stage.
const ManagedODHAddon = "managed-odh"
