// Package provider implements the generation-service client.
package provider

import "github.com/dawalabs/medglot"

// Client is the interface for generation backends.
// This is an alias to the main package interface for convenience.
type Client = medglot.Client

// GenerateRequest is an alias to the main package type.
type GenerateRequest = medglot.GenerateRequest

// GenerateResult is an alias to the main package type.
type GenerateResult = medglot.GenerateResult
