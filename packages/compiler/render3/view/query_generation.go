package view

import (
	"strings"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/util"
)

// GetQueryPredicate lowers the predicate of a query. String selectors
// become a pooled array with every comma separated ref as its own entry; a
// single type selector is used as is.
func GetQueryPredicate(query *R3QueryMetadata, pool *constant.ConstantPool) (output.OutputExpression, error) {
	selectors := query.Predicate
	if len(selectors) == 0 {
		return nil, util.NewCompileError(util.ErrMalformedQuery, nil, "Unexpected query form in %q", query.PropertyName)
	}

	if len(selectors) > 1 || selectors[0].IsString() {
		predicate := []output.OutputExpression{}
		for _, selector := range selectors {
			if !selector.IsString() {
				return nil, util.NewCompileError(util.ErrMalformedQuery, nil,
					"Found a type among the string selectors expected in %q", query.PropertyName)
			}
			for _, token := range strings.Split(selector.Value, ",") {
				predicate = append(predicate, output.Literal(strings.TrimSpace(token)))
			}
		}
		return pool.GetConstLiteral(output.LiteralArr(predicate), true), nil
	}

	if selectors[0].Type != nil {
		return selectors[0].Type, nil
	}
	return nil, util.NewCompileError(util.ErrMalformedQuery, nil, "Unexpected query form in %q", query.PropertyName)
}

// CreateQueryDefinition builds `query(idx, predicate, descendants[, read])`.
// A nil idx is emitted as null, as required for content queries.
func CreateQueryDefinition(query *R3QueryMetadata, pool *constant.ConstantPool, idx *int) (output.OutputExpression, error) {
	predicate, err := GetQueryPredicate(query, pool)
	if err != nil {
		return nil, err
	}
	var slot output.OutputExpression = output.TypedNullExpr
	if idx != nil {
		slot = output.Literal(*idx)
	}
	params := []output.OutputExpression{slot, predicate, output.Literal(query.Descendants)}
	if query.Read != nil {
		params = append(params, query.Read)
	}
	return output.Call(output.ImportExpr(r3_identifiers.Query), params...), nil
}

// CreateContentQueriesFunction registers every content query of a
// directive, or returns None when it has none.
func CreateContentQueriesFunction(queries []*R3QueryMetadata, pool *constant.ConstantPool, name string) (Optional, error) {
	if len(queries) == 0 {
		return None, nil
	}
	dirIndex := output.Variable("dirIndex")
	statements := make([]output.OutputStatement, 0, len(queries))
	for _, query := range queries {
		definition, err := CreateQueryDefinition(query, pool, nil)
		if err != nil {
			return None, err
		}
		statements = append(statements, output.Stmt(
			output.Call(output.ImportExpr(r3_identifiers.RegisterContentQuery), definition, dirIndex),
		))
	}
	params := []*output.FnParam{output.NewFnParam(dirIndex.Name, output.NumberType)}
	return Some(output.Fn(params, statements, functionName(name, "_ContentQueries"))), nil
}

// CreateContentQueriesRefreshFunction refreshes the content queries of the
// directive instance at dirIndex. Query lists live from queryStartIndex on.
func CreateContentQueriesRefreshFunction(queries []*R3QueryMetadata, name string) Optional {
	if len(queries) == 0 {
		return None
	}
	var statements []output.OutputStatement
	instance := output.Variable("instance")
	temporary := TemporaryAllocator(func(st output.OutputStatement) {
		statements = append(statements, st)
	}, TEMPORARY_NAME)

	statements = append(statements, output.NewDeclareVarStmt(instance.Name,
		output.Call(output.ImportExpr(r3_identifiers.Load), output.Variable("dirIndex")),
		output.InferredType, output.StmtModifierFinal, nil))

	queryStartIndex := output.Variable("queryStartIndex")
	for idx, query := range queries {
		var loadArg output.OutputExpression = queryStartIndex
		if idx > 0 {
			loadArg = output.Plus(queryStartIndex, output.Literal(idx))
		}
		getQueryList := output.Call(output.ImportExpr(r3_identifiers.LoadQueryList), loadArg)
		refresh := output.Call(output.ImportExpr(r3_identifiers.QueryRefresh), output.Assign(temporary(), getQueryList))
		update := output.Assign(output.Prop(instance, query.PropertyName), queryValue(query, temporary()))
		statements = append(statements, output.Stmt(output.And(refresh, update)))
	}

	params := []*output.FnParam{
		output.NewFnParam("dirIndex", output.NumberType),
		output.NewFnParam(queryStartIndex.Name, output.NumberType),
	}
	return Some(output.Fn(params, statements, functionName(name, "_ContentQueriesRefresh")))
}

// CreateViewQueriesFunction creates the view queries in the create phase
// and refreshes them into ctx in the update phase.
func CreateViewQueriesFunction(viewQueries []*R3QueryMetadata, pool *constant.ConstantPool, name string) (Optional, error) {
	if len(viewQueries) == 0 {
		return None, nil
	}
	var createStatements, updateStatements []output.OutputStatement
	temporary := TemporaryAllocator(func(st output.OutputStatement) {
		updateStatements = append(updateStatements, st)
	}, TEMPORARY_NAME)

	for i, query := range viewQueries {
		idx := i
		definition, err := CreateQueryDefinition(query, pool, &idx)
		if err != nil {
			return None, err
		}
		createStatements = append(createStatements, output.Stmt(definition))

		tmp := temporary()
		getQueryList := output.Call(output.ImportExpr(r3_identifiers.Load), output.Literal(i))
		refresh := output.Call(output.ImportExpr(r3_identifiers.QueryRefresh), output.Assign(tmp, getQueryList))
		update := output.Assign(output.Prop(output.Variable(CONTEXT_NAME), query.PropertyName), queryValue(query, tmp))
		updateStatements = append(updateStatements, output.Stmt(output.And(refresh, update)))
	}

	params := []*output.FnParam{
		output.NewFnParam(RENDER_FLAGS, output.NumberType),
		output.NewFnParam(CONTEXT_NAME, nil),
	}
	body := []output.OutputStatement{
		RenderFlagCheckIfStmt(core.RenderFlagsCreate, createStatements),
		RenderFlagCheckIfStmt(core.RenderFlagsUpdate, updateStatements),
	}
	return Some(output.Fn(params, body, functionName(name, "_Query"))), nil
}

func queryValue(query *R3QueryMetadata, temporary *output.ReadVarExpr) output.OutputExpression {
	if query.First {
		return output.Prop(temporary, "first")
	}
	return temporary
}

func functionName(typeName, suffix string) string {
	if typeName == "" {
		return ""
	}
	return typeName + suffix
}
