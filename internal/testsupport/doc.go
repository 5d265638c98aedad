// Package testsupport hosts shared helpers for package tests: temp-backed
// configuration builders and sized file fixtures.
package testsupport
