// Package services defines the shared error taxonomy used across export
// components.
//
// Sentinel errors classify failures by scope: metadata errors abort the whole
// export request, while encode, size-budget, and filesystem errors are scoped
// to a single platform and converted into failed results by the orchestrator.
// Wrap tags an error with one of the sentinels plus component context so
// callers can classify with errors.Is without parsing messages.
package services
