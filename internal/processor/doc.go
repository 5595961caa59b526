// Package processor wires configuration into the translation components
// for each command: the batch job, the HTTP service, the stdin/stdout
// pipeline and the package listing. This package serves as the main
// coordinator between all other components.
package processor
