// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Orchestrator is the centre of the package: it turns a query into
// two concurrent backend searches and commits their combined result.
//
// Services are pure Go with no external dependencies.
package services
