// Package batch runs one tool operation over several ids and reports each
// outcome, so a partial failure never hides the items that succeeded.
package batch
