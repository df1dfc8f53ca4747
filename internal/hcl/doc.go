// Package hcl provides the HCL implementation of config.Loader. It parses
// manifest files, evaluates their expressions against the process
// environment and translates the blocks into the config model.
package hcl
