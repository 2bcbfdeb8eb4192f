// Package msbuild opens .NET project files (.csproj, .vbproj, .fsproj).
//
// A [Workspace] reads PackageReference, Reference, ProjectReference and
// FrameworkReference items in document order and, for C# projects, lists
// the source documents: SDK-style projects glob **/*.cs under the project
// directory (bin/ and obj/ excluded, Compile Remove honored), legacy
// projects list their Compile items.
//
// Declarations are found by [ParseDeclarations], a lexer that understands
// enough C# to skip comments and literals; no compiler is involved.
package msbuild
