// Package health reports whether the token store behind a tokenvault Engine
// is reachable.
//
// Open registers one check per connection it makes (redis, postgres). The
// checks run concurrently with a shared timeout and are served by
// ReadinessHandler; LivenessHandler always answers 200.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(deps.Checks))
//
// Responses are plain text unless the client asks for JSON with
// "Accept: application/json" or "?format=json".
package health
