// Package fileutil holds small filesystem helpers shared by the packaging
// and config layers.
package fileutil
