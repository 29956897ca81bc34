// Package kanban holds project-wide constants.
package kanban

// Version is the board CLI and library version.
const Version = "0.1.0"
