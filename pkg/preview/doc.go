// Package preview compiles a user template and renders it against the
// current form values.
//
// Templates use `{{ name }}` placeholders (autoescaped) and the pongo2 tag
// language. Handlebars sources keep working: `{{{ name }}}` emits raw markup
// and `{{#if}}`, `{{#unless}}` and `{{#each}}` blocks are translated before
// compilation. Rendering never panics; compile and execution failures yield
// empty markup and are reported through Err.
//
// Pipeline connects a Renderer to a store.Store and a surface.Presenter so
// every store write produces exactly one re-render.
package preview
