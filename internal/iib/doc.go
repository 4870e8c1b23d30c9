// Package iib resolves index image bundle (IIB) overrides for operator installs.
//
// The CI trigger pipeline publishes a JSON document listing, per OCP
// version and CI job, the operators it built a fresh index image for:
//
//	{
//	  "v4.15": {
//	    "4_15_job": {
//	      "operators": {
//	        "op-1": {"triggered": true, "iib": "registry/iib:123"}
//	      }
//	    }
//	  }
//	}
//
// A version/job pair missing from the document is an error: every pair that
// takes part in automated triggering is published, even when empty. An
// operator missing from a present pair, or present but not triggered, simply
// has no override.
//
// The document is read through a [Source]: a local file, an S3 object
// downloaded to a temporary file, or an HTTP URL.
package iib
