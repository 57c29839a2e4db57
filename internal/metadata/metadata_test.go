package metadata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngdefc/internal/metadata"
	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/render3/view/compiler"
	"ngdefc/packages/compiler/render3/view/template"
)

const directiveDoc = `
directives:
  - name: MyDir
    selector: "[myDir]"
    deps:
      - token: Service
        optional: true
      - token: role
        kind: attribute
      - kind: elementRef
    host:
      "[title]": title
      role: button
      "(click)": onClick()
    inputs:
      zeta: zeta
      label: aria-label
      alpha: ""
    outputs:
      changed: changed
    queries:
      - property: items
        predicate: [item]
        descendants: true
    providers: [LoggerService]
`

func parseUnits(t *testing.T, data string, opts metadata.Options) []metadata.Unit {
	t.Helper()
	doc, err := metadata.Parse("test.yaml", []byte(data))
	require.NoError(t, err)
	units, err := doc.Units(opts)
	require.NoError(t, err)
	return units
}

func TestParse(t *testing.T) {
	t.Run("should keep document order of maps", func(t *testing.T) {
		units := parseUnits(t, directiveDoc, metadata.Options{})
		require.Len(t, units, 1)
		unit := units[0]
		assert.Equal(t, "MyDir", unit.Name)
		assert.Equal(t, metadata.KindDirective, unit.Kind)
		require.NotNil(t, unit.Directive)

		assert.Equal(t, []string{"[title]", "role", "(click)"}, unit.Directive.RawHost.Keys())
		assert.Equal(t, []view.R3BindingPropertyMetadata{
			{ClassPropertyName: "zeta", BindingPropertyName: "zeta"},
			{ClassPropertyName: "label", BindingPropertyName: "aria-label"},
			{ClassPropertyName: "alpha", BindingPropertyName: "alpha"},
		}, unit.Directive.Inputs)
	})

	t.Run("should resolve dependencies", func(t *testing.T) {
		deps := parseUnits(t, directiveDoc, metadata.Options{})[0].Directive.Deps
		require.Len(t, deps, 3)

		assert.Equal(t, render3.R3ResolvedDependencyTypeToken, deps[0].Resolved)
		assert.True(t, deps[0].Optional)
		token, ok := deps[0].Token.(*output.ReadVarExpr)
		require.True(t, ok)
		assert.Equal(t, "Service", token.Name)

		assert.Equal(t, render3.R3ResolvedDependencyTypeAttribute, deps[1].Resolved)
		attr, ok := deps[1].Token.(*output.LiteralExpr)
		require.True(t, ok)
		assert.Equal(t, "role", attr.Value)

		assert.Equal(t, render3.R3ResolvedDependencyTypeElementRef, deps[2].Resolved)
		assert.Nil(t, deps[2].Token)
	})

	t.Run("should tell an inherited factory from an empty constructor", func(t *testing.T) {
		units := parseUnits(t, `
directives:
  - name: Child
    inheritFactory: true
  - name: Plain
`, metadata.Options{})
		require.Len(t, units, 2)
		assert.Nil(t, units[0].Directive.Deps)
		assert.NotNil(t, units[1].Directive.Deps)
		assert.Empty(t, units[1].Directive.Deps)
	})

	t.Run("should leave providers absent unless declared", func(t *testing.T) {
		units := parseUnits(t, `
directives:
  - name: A
  - name: B
    providers: []
`, metadata.Options{})
		assert.Nil(t, units[0].Directive.Providers)
		assert.NotNil(t, units[1].Directive.Providers)
	})

	t.Run("should read dotted references as property reads", func(t *testing.T) {
		units := parseUnits(t, `
directives:
  - name: MyDir
    queries:
      - property: ref
        type: core.ElementRef
        read: core.ViewContainerRef
`, metadata.Options{})
		query := units[0].Directive.Queries[0]
		require.Len(t, query.Predicate, 1)
		prop, ok := query.Predicate[0].Type.(*output.ReadPropExpr)
		require.True(t, ok)
		assert.Equal(t, "ElementRef", prop.Name)
		assert.Equal(t, "core.ViewContainerRef", output.NewJsEmitter().EmitExpression(query.Read))
	})

	t.Run("should accept JSON documents", func(t *testing.T) {
		units := parseUnits(t, `{"directives": [{"name": "J", "selector": "j-dir", "inputs": {"b": "b", "a": "a"}}]}`, metadata.Options{})
		require.Len(t, units, 1)
		assert.Equal(t, "b", units[0].Directive.Inputs[0].ClassPropertyName)
	})

	t.Run("should accept an empty document", func(t *testing.T) {
		units := parseUnits(t, "", metadata.Options{})
		assert.Empty(t, units)
	})
}

func TestComponents(t *testing.T) {
	const doc = `
components:
  - name: MyComp
    selector: my-comp
    template:
      - element: div
        attributes:
          role: main
          id: root
        children:
          - text: hi
          - content: header
    ngContentSelectors: ["header"]
    directives:
      "[role]": RoleDir
    styles: [":host { display: block }"]
    encapsulation: None
    changeDetection: OnPush
    animations: [fade]
    viewProviders: [Local]
    interpolation: ["[[", "]]"]
`

	t.Run("should convert component fields", func(t *testing.T) {
		units := parseUnits(t, doc, metadata.Options{WrapInClosure: true})
		require.Len(t, units, 1)
		unit := units[0]
		assert.Equal(t, metadata.KindComponent, unit.Kind)
		require.NotNil(t, unit.Component)
		meta := unit.Component.R3ComponentMetadata

		require.NotNil(t, meta.Encapsulation)
		assert.Equal(t, core.ViewEncapsulationNone, *meta.Encapsulation)
		require.NotNil(t, meta.ChangeDetection)
		assert.Equal(t, core.ChangeDetectionStrategyOnPush, *meta.ChangeDetection)
		assert.Equal(t, [2]string{"[[", "]]"}, meta.Interpolation)
		assert.True(t, meta.WrapDirectivesAndPipesInClosure)
		assert.Equal(t, []string{"[role]"}, meta.Directives.Keys())
		assert.NotNil(t, meta.Animations)
		assert.NotNil(t, meta.ViewProviders)
		assert.Equal(t, []string{"header"}, meta.Template.NgContentSelectors)
	})

	t.Run("should convert template nodes", func(t *testing.T) {
		nodes := parseUnits(t, doc, metadata.Options{})[0].Component.Template.Nodes
		require.Len(t, nodes, 1)
		div, ok := nodes[0].(*view.TemplateElement)
		require.True(t, ok)
		assert.Equal(t, "div", div.Name)
		assert.Equal(t, [][2]string{{"role", "main"}, {"id", "root"}}, div.Attributes)
		require.Len(t, div.Children, 2)
		assert.Equal(t, &view.TemplateText{Value: "hi"}, div.Children[0])
		assert.Equal(t, &view.TemplateContent{Selector: "header"}, div.Children[1])
	})

	t.Run("should let the document override the closure default", func(t *testing.T) {
		units := parseUnits(t, `
components:
  - name: C
    wrapDirectivesAndPipesInClosure: false
`, metadata.Options{WrapInClosure: true})
		assert.False(t, units[0].Component.WrapDirectivesAndPipesInClosure)
	})

	t.Run("should reject interpolation markers that look like markup", func(t *testing.T) {
		doc, err := metadata.Parse("c.yaml", []byte(`components: [{name: C, interpolation: ["<%", "%>"]}]`))
		require.NoError(t, err)
		_, err = doc.Units(metadata.Options{})
		assert.ErrorContains(t, err, `start marker "<%" is not usable`)
	})
}

func TestPipes(t *testing.T) {
	t.Run("should default pipes to pure", func(t *testing.T) {
		units := parseUnits(t, `
pipes:
  - name: UpperPipe
    pipeName: upper
  - name: AsyncPipe
    pipeName: async
    pure: false
    deps:
      - kind: changeDetectorRef
`, metadata.Options{})
		require.Len(t, units, 2)
		assert.Equal(t, metadata.KindPipe, units[0].Kind)
		require.NotNil(t, units[0].Pipe)
		assert.Equal(t, "upper", units[0].Pipe.PipeName)
		assert.True(t, units[0].Pipe.Pure)
		assert.False(t, units[1].Pipe.Pure)
		require.Len(t, units[1].Pipe.Deps, 1)
		assert.Equal(t, render3.R3ResolvedDependencyTypeChangeDetectorRef, units[1].Pipe.Deps[0].Resolved)
	})

	t.Run("should order pipes after directives and components", func(t *testing.T) {
		units := parseUnits(t, `
pipes: [{name: P}]
components: [{name: C}]
directives: [{name: D}]
`, metadata.Options{})
		require.Len(t, units, 3)
		assert.Equal(t, []string{"D", "C", "P"}, []string{units[0].Name, units[1].Name, units[2].Name})
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown top-level key", "modules: []", "modules"},
		{"impure flag that is not a boolean", "pipes: [{name: P, pure: maybe}]", "pure"},
		{"unknown directive field", "directives: [{name: A, bogus: 1}]", "bogus"},
		{"bad encapsulation", "components: [{name: A, encapsulation: Scoped}]", "encapsulation"},
		{"bad dependency kind", "directives: [{name: A, deps: [{kind: magic}]}]", "kind"},
		{"query without a property", "directives: [{name: A, queries: [{first: true}]}]", "property"},
		{"node with two kinds", "components: [{name: A, template: [{element: div, text: hi}]}]", "template"},
		{"short interpolation", "components: [{name: A, interpolation: ['{{']}]}", "interpolation"},
		{"bad identifier", "directives: [{name: A, providers: ['not valid']}]", "providers"},
	}
	for _, tc := range cases {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			err := metadata.Validate("doc.yaml", []byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, metadata.ErrInvalidDocument)

			var verr *metadata.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	t.Run("should report malformed YAML as a decode error", func(t *testing.T) {
		err := metadata.Validate("doc.yaml", []byte("directives: [unclosed"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, metadata.ErrInvalidDocument)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("should accept the directive fixture", func(t *testing.T) {
		assert.NoError(t, metadata.Validate("doc.yaml", []byte(directiveDoc)))
	})
}

func TestLoad(t *testing.T) {
	t.Run("should read a file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dirs.yaml")
		require.NoError(t, os.WriteFile(path, []byte(directiveDoc), 0o600))

		doc, err := metadata.Load(path)
		require.NoError(t, err)
		require.Len(t, doc.Directives, 1)
		assert.Equal(t, "MyDir", doc.Directives[0].Name)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := metadata.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestCompileLoadedUnits(t *testing.T) {
	t.Run("should compile a loaded directive", func(t *testing.T) {
		unit := parseUnits(t, directiveDoc, metadata.Options{})[0]
		res, err := compiler.CompileDirectiveFromSummary(unit.Directive, view.NewCompilationContext(false))
		require.NoError(t, err)

		got := output.NewJsEmitter().EmitStatements(res.Statements)
		for _, want := range []string{
			"MyDir.ngDirectiveDef = i0.ɵdefineDirective({",
			"'aria-label'",
			"i0.ɵinjectAttribute('role')",
			"i0.ɵinjectElementRef()",
			"i0.ɵlistener('click'",
			"LoggerService",
		} {
			assert.True(t, strings.Contains(got, want), "expected %q in %q", want, got)
		}
	})

	t.Run("should compile a loaded component with the reference builder", func(t *testing.T) {
		unit := parseUnits(t, `
components:
  - name: MyComp
    selector: my-comp
    template:
      - element: span
`, metadata.Options{})[0]
		ctx := view.NewCompilationContext(false)
		ctx.TemplateBuilder = template.NewBuilder()

		res, err := compiler.CompileComponentFromSummary(unit.Component, ctx)
		require.NoError(t, err)
		got := output.NewJsEmitter().EmitStatements(res.Statements)
		assert.Contains(t, got, "MyComp.ngComponentDef = i0.ɵdefineComponent({")
		assert.Contains(t, got, "i0.ɵelement(0,'span')")
	})
}
