// Package httpapi mounts the dashboard API on a chi router: the DNA
// authentication endpoints, the school records endpoints gated by permission,
// health and metrics.
package httpapi
