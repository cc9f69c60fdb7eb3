package parsers

import (
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	ecmaClassKinds    = []string{"class_declaration", "class"}
	ecmaFunctionKinds = []string{"function_declaration", "generator_function_declaration", "method_definition"}
	ecmaWrapperKinds  = []string{"export_statement"}

	ecmaBindingKinds       = []string{"variable_declarator", "field_definition", "public_field_definition"}
	ecmaFunctionValueKinds = []string{"arrow_function", "function_expression", "function", "generator_function"}

	tsClassKinds    = append([]string{"abstract_class_declaration", "interface_declaration"}, ecmaClassKinds...)
	tsFunctionKinds = append([]string{"method_signature", "abstract_method_signature", "function_signature"}, ecmaFunctionKinds...)
)

// JavaScript covers plain, module, and CommonJS sources including JSX.
var JavaScript = &LanguageConfig{
	Name:          "javascript",
	Extensions:    []string{".js", ".jsx", ".mjs", ".cjs"},
	Grammar:       javascript.Language,
	ClassKinds:    ecmaClassKinds,
	FunctionKinds: ecmaFunctionKinds,
	CallKinds:     []string{"call_expression"},
	WrapperKinds:  ecmaWrapperKinds,
	SkipKinds:     []string{"decorator"},
	CommentKinds:  []string{"comment"},

	BindingKinds:       ecmaBindingKinds,
	FunctionValueKinds: ecmaFunctionValueKinds,
}

// TypeScript treats interfaces as classes whose members are method signatures.
var TypeScript = &LanguageConfig{
	Name:          "typescript",
	Extensions:    []string{".ts", ".mts", ".cts"},
	Grammar:       typescript.LanguageTypescript,
	ClassKinds:    tsClassKinds,
	FunctionKinds: tsFunctionKinds,
	CallKinds:     []string{"call_expression"},
	WrapperKinds:  ecmaWrapperKinds,
	SkipKinds:     []string{"decorator"},
	CommentKinds:  []string{"comment"},

	BindingKinds:       ecmaBindingKinds,
	FunctionValueKinds: ecmaFunctionValueKinds,
}

// TSX uses the TypeScript tables with the JSX-aware grammar.
var TSX = &LanguageConfig{
	Name:          "tsx",
	Extensions:    []string{".tsx"},
	Grammar:       typescript.LanguageTSX,
	ClassKinds:    tsClassKinds,
	FunctionKinds: tsFunctionKinds,
	CallKinds:     []string{"call_expression"},
	WrapperKinds:  ecmaWrapperKinds,
	SkipKinds:     []string{"decorator"},
	CommentKinds:  []string{"comment"},

	BindingKinds:       ecmaBindingKinds,
	FunctionValueKinds: ecmaFunctionValueKinds,
}
