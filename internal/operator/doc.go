// Package operator installs and uninstalls OLM operators on an OpenShift
// cluster.
//
// An install creates the operator namespace and OperatorGroup, a
// CatalogSource in openshift-marketplace when the request carries an index
// image override, and a Subscription. It then waits for the installed
// ClusterServiceVersion to succeed. An uninstall removes the same objects and
// waits for the ClusterServiceVersion to disappear.
package operator
