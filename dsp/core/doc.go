// Package core holds the configuration, error taxonomy and small numeric
// helpers shared by the pitch analysis and scoring packages.
package core
