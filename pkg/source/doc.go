// Package source fetches template documents (`{html, fields}`) and tracks
// the state of the current fetch.
//
// Clients resolve a template id to a model.Template: HTTPClient calls
// GET {base}/templates/{id}; FileClient and FSClient read <id>.json,
// <id>.yaml, <id>.yml or <id>.hcl. Loader wraps a Client with the
// Idle/Loading/Ready/Failed states the editor page renders, discarding the
// results of superseded loads. FieldsFromOpenAPI imports field definitions
// from an OpenAPI 3 request body.
package source
