// Package product defines the install/uninstall request model shared by
// add-ons and operators, and the parameter normalizer that turns raw user
// entries into [Request] values.
//
// Raw entries come either from repeated CLI flags
// ("name=foo;channel=stable;timeout=30m") or from the products lists of a
// YAML config file. Both are reduced to an ordered list of [Param] pairs and
// passed through [Normalize], which strips the control keys of the request's
// [Kind], parses the timeout and injects defaults for absent fields.
package product
