package config

import (
	"strconv"
	"strings"
)

// LoadEnv fills settings that were not given on the command line from the
// environment. getenv is usually os.Getenv.
//
// JOB_NAME is only honored when INSTALL_FROM_IIB is true; without it no
// operator is installed from an IIB index image unless its entry names one.
func LoadEnv(c *RunConfiguration, getenv func(string) string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(getenv(key))
		}
	}

	fill(&c.OCMToken, EnvOCMToken)
	fill(&c.BrewToken, EnvBrewToken)
	fill(&c.ClusterVersion, EnvOCPVersion)

	if fromIIB, err := strconv.ParseBool(getenv(EnvInstallFromIIB)); err == nil && fromIIB {
		fill(&c.JobName, EnvJobName)
	}

	// The bucket and the file are alternatives; only consult the
	// environment when neither was given explicitly.
	if c.IIB.File == "" && c.IIB.S3Bucket == "" && c.IIB.S3Key == "" && c.IIB.URL == "" {
		fill(&c.IIB.File, EnvIIBFile)
		fill(&c.IIB.S3Bucket, EnvIIBS3Bucket)
		fill(&c.IIB.S3Key, EnvIIBS3Key)
	}

	fill(&c.S3.Endpoint, EnvS3Endpoint)
	fill(&c.S3.Region, EnvS3Region)
	fill(&c.S3.AccessKeyID, EnvAccessKeyID)
	fill(&c.S3.SecretAccessKey, EnvSecretAccessKey)
	if c.S3.Region == "" {
		c.S3.Region = DefaultS3Region
	}
}
