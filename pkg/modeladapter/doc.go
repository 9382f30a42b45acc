// Package modeladapter defines the boundary between the agent loop and a
// language-model API.
//
// [Completer] is the one method the loop needs. Providers under pkg/providers
// embed [ModelAdapter] for the model settings, token [usage] tracking and the
// latest [RateLimitInfo]; the HTTP-only provider also uses its PostJSON
// helper. Non-2xx replies surface as [RateLimitError] or [StatusError] with
// the provider body intact so the agent can classify them. Nothing here
// retries.
package modeladapter
