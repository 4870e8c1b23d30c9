// Package addon installs and uninstalls OCM managed add-ons. It provides the
// action function the dispatcher runs for add-on requests.
package addon
