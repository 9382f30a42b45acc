// Package engine is the composition root of the content studio. It builds a
// model transport, a tool registry and an agent from a Config and exposes
// them to frontends through Engine. Tool activity is observable through an
// EventBus so frontends never import the lower-level packages directly.
package engine
