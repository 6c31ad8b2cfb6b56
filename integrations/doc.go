// Package integrations groups the remote API clients built on the retrying
// executor in package http. Each client takes an http.Executor configured with
// the service's base URL and credentials and maps responses into typed values.
package integrations
