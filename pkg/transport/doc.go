// Package transport provides submission.Transport implementations: an HTTP
// poster for real endpoints and a simulated transport for demos and tests.
package transport
