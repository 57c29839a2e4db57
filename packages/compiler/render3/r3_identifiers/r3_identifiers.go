package r3_identifiers

import (
	"ngdefc/packages/compiler/output"
)

// CORE is the module every runtime instruction is imported from
const CORE = "@angular/core"

func ref(name string) *output.ExternalReference {
	return &output.ExternalReference{ModuleName: CORE, Name: name}
}

// Instructions
var (
	Element       = ref("ɵelement")
	ElementStart  = ref("ɵelementStart")
	ElementEnd    = ref("ɵelementEnd")
	Text          = ref("ɵtext")
	Projection    = ref("ɵprojection")
	ProjectionDef = ref("ɵprojectionDef")

	ElementProperty  = ref("ɵelementProperty")
	ElementAttribute = ref("ɵelementAttribute")

	ComponentHostSyntheticProperty = ref("ɵcomponentHostSyntheticProperty")
	ComponentHostSyntheticListener = ref("ɵcomponentHostSyntheticListener")

	ElementHostAttrs      = ref("ɵelementHostAttrs")
	ElementStyling        = ref("ɵelementStyling")
	ElementStylingMap     = ref("ɵelementStylingMap")
	ElementStyleProp      = ref("ɵelementStyleProp")
	ElementClassProp      = ref("ɵelementClassProp")
	ElementStylingApply   = ref("ɵelementStylingApply")
	DefaultStyleSanitizer = ref("ɵdefaultStyleSanitizer")

	AllocHostVars = ref("ɵallocHostVars")
	Bind          = ref("ɵbind")
	Listener      = ref("ɵlistener")

	Load          = ref("ɵload")
	LoadQueryList = ref("ɵloadQueryList")
	Query         = ref("ɵquery")
	QueryRefresh  = ref("ɵqueryRefresh")

	RegisterContentQuery = ref("ɵregisterContentQuery")

	ResolveWindow   = ref("ɵresolveWindow")
	ResolveDocument = ref("ɵresolveDocument")
	ResolveBody     = ref("ɵresolveBody")
)

// Pure functions, indexed by the number of varying arguments
var (
	PureFunction0 = ref("ɵpureFunction0")
	PureFunction1 = ref("ɵpureFunction1")
	PureFunction2 = ref("ɵpureFunction2")
	PureFunction3 = ref("ɵpureFunction3")
	PureFunction4 = ref("ɵpureFunction4")
	PureFunction5 = ref("ɵpureFunction5")
	PureFunction6 = ref("ɵpureFunction6")
	PureFunction7 = ref("ɵpureFunction7")
	PureFunction8 = ref("ɵpureFunction8")
	PureFunctionV = ref("ɵpureFunctionV")
)

// Pipe bindings, indexed by the number of pipe arguments plus one
var (
	PipeBind1 = ref("ɵpipeBind1")
	PipeBind2 = ref("ɵpipeBind2")
	PipeBind3 = ref("ɵpipeBind3")
	PipeBind4 = ref("ɵpipeBind4")
	PipeBindV = ref("ɵpipeBindV")
)

// Dependency injection
var (
	Inject                  = ref("inject")
	INJECTOR                = ref("INJECTOR")
	DirectiveInject         = ref("ɵdirectiveInject")
	InjectAttribute         = ref("ɵinjectAttribute")
	InjectElementRef        = ref("ɵinjectElementRef")
	InjectTemplateRef       = ref("ɵinjectTemplateRef")
	InjectViewContainerRef  = ref("ɵinjectViewContainerRef")
	InjectChangeDetectorRef = ref("ɵinjectChangeDetectorRef")
	GetInheritedFactory     = ref("ɵgetInheritedFactory")
)

// Definitions and their type signatures
var (
	DefineDirective      = ref("ɵdefineDirective")
	DefineComponent      = ref("ɵdefineComponent")
	DirectiveDefWithMeta = ref("ɵDirectiveDefWithMeta")
	ComponentDefWithMeta = ref("ɵComponentDefWithMeta")
	DefinePipe           = ref("ɵdefinePipe")
	PipeDefWithMeta      = ref("ɵPipeDefWithMeta")

	ProvidersFeature         = ref("ɵProvidersFeature")
	InheritDefinitionFeature = ref("ɵInheritDefinitionFeature")
	NgOnChangesFeature       = ref("ɵNgOnChangesFeature")
)

// PureFunctionFor returns the pure function instruction taking argCount
// varying arguments, and whether the arguments must be passed as one array.
func PureFunctionFor(argCount int) (*output.ExternalReference, bool) {
	fns := []*output.ExternalReference{
		PureFunction0, PureFunction1, PureFunction2, PureFunction3, PureFunction4,
		PureFunction5, PureFunction6, PureFunction7, PureFunction8,
	}
	if argCount < len(fns) {
		return fns[argCount], false
	}
	return PureFunctionV, true
}

// PipeBindFor returns the pipe binding instruction for a pipe with argCount
// arguments, and whether the value and arguments must be passed as one array.
func PipeBindFor(argCount int) (*output.ExternalReference, bool) {
	fns := []*output.ExternalReference{PipeBind1, PipeBind2, PipeBind3, PipeBind4}
	if argCount < len(fns) {
		return fns[argCount], false
	}
	return PipeBindV, true
}
