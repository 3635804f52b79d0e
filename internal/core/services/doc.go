// Package services implements the driving port interfaces.
// Services contain the query pipeline (extraction, date resolution,
// hybrid retrieval, plan assembly, token budgeting and dispatch) and
// orchestrate calls to driven ports (adapters).
//
// Services never import adapters; every external system is reached
// through a driven port.
package services
