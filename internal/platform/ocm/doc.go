// Package ocm is a small client for the OpenShift Cluster Manager
// clusters_mgmt API, covering the add-on lifecycle of a cluster.
//
// Requests are authenticated with an access token obtained from the Red Hat
// SSO by exchanging the user's offline OCM token (OAuth2 refresh token
// grant). Transient failures (5xx, 429 and transport errors) are retried;
// other API errors are returned as *APIError.
package ocm
