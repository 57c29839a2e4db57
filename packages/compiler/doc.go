// Package compiler is the root of the Ivy definition compiler. It turns
// resolved directive, component and pipe metadata into the static
// definition fields (ngDirectiveDef, ngComponentDef, ngPipeDef) that the
// Angular runtime reads.
//
// Sub-packages:
//
//   - core: ViewEncapsulation, ChangeDetectionStrategy and the parsed
//     selector and attribute-marker helpers
//   - output: the output AST and the JavaScript/type emitter
//   - pool: the per-file constant pool
//   - expression_parser and template_parser: host binding parsing
//   - css: selector scoping for emulated encapsulation
//   - render3: factories, pipes and the Ivy instruction identifiers
//   - render3/view: directive and component definitions, host bindings,
//     styling and queries
//   - render3/view/compiler: summary entry points
//   - render3/view/template: the reference template builder
//   - util: ordered maps, compile errors and naming helpers
package compiler
